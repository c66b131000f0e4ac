package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chrissnell/evapo/internal/log"
	"github.com/chrissnell/evapo/internal/types"
	"go.uber.org/zap"
)

// ReadingSource supplies station readings for a time range
type ReadingSource interface {
	Readings(ctx context.Context, station string, from, to time.Time) ([]types.Reading, error)
}

// Client holds the connection to the TimescaleDB database the stations
// write their readings to
type Client struct {
	connectionString string
	DB               *gorm.DB // Exported so it can be accessed from other packages
	logger           *zap.SugaredLogger

	// MaxRetries bounds the connection attempts made by Connect
	MaxRetries uint64
}

// NewClient creates a new database client
func NewClient(connectionString string, logger *zap.SugaredLogger) *Client {
	return &Client{
		connectionString: connectionString,
		logger:           logger,
		MaxRetries:       5,
	}
}

// Connect connects to the TimescaleDB database, retrying with exponential
// backoff until the context is cancelled or MaxRetries attempts have failed
func (c *Client) Connect(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second

	err := backoff.Retry(func() error {
		db, err := CreateConnection(c.connectionString)
		if err != nil {
			c.logger.Warnf("unable to connect to TimescaleDB: %v", err)
			return err
		}
		c.DB = db
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, c.MaxRetries), ctx))
	if err != nil {
		return fmt.Errorf("could not connect to TimescaleDB: %w", err)
	}

	c.logger.Info("TimescaleDB connection successful")
	return nil
}

// Readings returns the readings of one station in [from, to), oldest first
func (c *Client) Readings(ctx context.Context, station string, from, to time.Time) ([]types.Reading, error) {
	if c.DB == nil {
		return nil, fmt.Errorf("database is not connected")
	}

	var readings []types.Reading
	err := c.DB.WithContext(ctx).
		Where("stationname = ? AND time >= ? AND time < ?", station, from, to).
		Order("time").
		Find(&readings).Error
	if err != nil {
		return nil, fmt.Errorf("error querying readings for %s: %w", station, err)
	}

	c.logger.Debugf("fetched %d readings for %s between %v and %v", len(readings), station, from, to)
	return readings, nil
}

// Close releases the underlying connection pool
func (c *Client) Close() error {
	if c.DB == nil {
		return nil
	}
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateConnection is a helper function to create a database connection with standard GORM configuration
func CreateConnection(connectionString string) (*gorm.DB, error) {
	// Create a logger for gorm
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second, // Slow SQL threshold
			LogLevel:                  logger.Warn, // Log level
			IgnoreRecordNotFoundError: true,        // Ignore ErrRecordNotFound error for logger
			Colorful:                  false,
		},
	)

	log.Info("connecting to TimescaleDB...")
	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, err
	}

	return db, nil
}

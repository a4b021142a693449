package middleware

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ozclean/submission-gateway/internal/models"
	"github.com/ozclean/submission-gateway/internal/repository"
)

// Buffered channel for async logging
var logChannel chan models.RequestLog

// Starts the background worker that batch-inserts request logs.
func InitRequestLogger(repo *repository.RequestLogRepository, bufferSize int) {
	logChannel = make(chan models.RequestLog, bufferSize)

	go func() {
		batch := make([]models.RequestLog, 0, 100)
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case entry := <-logChannel:
				batch = append(batch, entry)

				if len(batch) >= 100 {
					insertBatch(repo, batch)
					batch = make([]models.RequestLog, 0, 100)
				}
			case <-ticker.C:
				if len(batch) > 0 {
					insertBatch(repo, batch)
					batch = make([]models.RequestLog, 0, 100)
				}
			}
		}
	}()
}

func insertBatch(repo *repository.RequestLogRepository, logs []models.RequestLog) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := repo.CreateBatch(ctx, logs); err != nil {
		// Log and move on, request handling must not depend on this
		log.Printf("failed to insert request logs: %v", err)
	}
}

// Records every HTTP request for the analytics surface.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)

		var apiKeyID *uuid.UUID
		if apiKeyInterface, exists := c.Get("api_key_id"); exists {
			if id, ok := apiKeyInterface.(uuid.UUID); ok {
				apiKeyID = &id
			}
		}

		entry := models.RequestLog{
			Timestamp:      start,
			APIKeyID:       apiKeyID,
			Method:         c.Request.Method,
			Path:           c.Request.URL.Path,
			Action:         c.GetString("action"),
			StatusCode:     c.Writer.Status(),
			ResponseTimeMs: int(duration.Milliseconds()),
			IPAddress:      c.ClientIP(),
			UserAgent:      c.Request.UserAgent(),
		}

		if logChannel == nil {
			return
		}

		select {
		case logChannel <- entry:
		default:
			// Channel full, skip rather than block the request
			log.Printf("request log channel full, dropping entry")
		}
	}
}

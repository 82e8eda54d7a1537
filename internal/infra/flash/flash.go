// Package flash carries one-shot notices from a redirecting request to the
// next page render.
package flash

import (
	"github.com/gin-gonic/gin"
)

const (
	CategorySuccess = "success"
	CategoryError   = "error"
)

type Message struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

// Store queues messages for the current browser and hands each out once.
type Store interface {
	Add(c *gin.Context, category, text string) error
	// Take returns the queued messages in insertion order and clears them.
	Take(c *gin.Context) ([]Message, error)
}

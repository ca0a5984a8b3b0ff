package client

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Commands provides command-line operations for the client
type Commands struct {
	client *Client
}

// NewCommands creates a new Commands instance
func NewCommands(client *Client) *Commands {
	return &Commands{
		client: client,
	}
}

// Create creates a short URL and displays the result
func (c *Commands) Create(ctx context.Context, originalURL string) error {
	result, err := c.client.CreateLink(ctx, originalURL)
	if err != nil {
		return err
	}

	fmt.Printf("Short URL created:\n")
	fmt.Printf("Short Code: %s\n", result.ShortCode)
	fmt.Printf("Short URL: %s\n", result.ShortURL)
	fmt.Printf("Original URL: %s\n", result.OriginalURL)
	fmt.Printf("Created At: %s\n", result.CreatedAt.Format(time.RFC3339))

	return nil
}

// Get retrieves and displays information about a short URL
func (c *Commands) Get(ctx context.Context, shortCode string) error {
	info, err := c.client.GetLinkInfo(ctx, shortCode)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			fmt.Printf("Short code '%s' not found\n", shortCode)
			return nil
		}
		return err
	}

	fmt.Printf("URL Information:\n")
	fmt.Printf("Short Code: %s\n", info.ShortCode)
	fmt.Printf("Short URL: %s\n", info.ShortURL)
	fmt.Printf("Original URL: %s\n", info.OriginalURL)
	fmt.Printf("Created At: %s\n", info.CreatedAt.Format(time.RFC3339))
	fmt.Printf("Click Count: %d\n", info.ClickCount)

	return nil
}

// Resolve prints where a short code redirects to
func (c *Commands) Resolve(ctx context.Context, shortCode string) error {
	location, err := c.client.Resolve(ctx, shortCode)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			fmt.Printf("Short code '%s' not found\n", shortCode)
			return nil
		}
		return err
	}

	fmt.Println(location)
	return nil
}

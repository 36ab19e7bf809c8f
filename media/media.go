// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ErrUploadFailed wraps every media host rejection or transport failure.
var ErrUploadFailed = errors.New("media upload failed")

// Asset is a stored media object.
type Asset struct {
	URL      string
	PublicID string
}

// Host stores video bytes and returns a durable reference.
type Host interface {
	Upload(ctx context.Context, r io.Reader, folder string) (*Asset, error)
}

// Cloudinary uploads videos through the Cloudinary upload API.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinary builds an uploader from account credentials. The secret
// comes from configuration, never from source.
func NewCloudinary(cloudName, apiKey, apiSecret string) (*Cloudinary, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, errors.New("cloudinary credentials are incomplete")
	}

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to configure cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return &Cloudinary{cld: cld}, nil
}

// Upload streams r to folder as a video resource and waits for the result.
func (c *Cloudinary) Upload(ctx context.Context, r io.Reader, folder string) (*Asset, error) {
	resp, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:       folder,
		ResourceType: "video",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("%w: %s", ErrUploadFailed, resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return nil, fmt.Errorf("%w: no url returned", ErrUploadFailed)
	}

	return &Asset{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}

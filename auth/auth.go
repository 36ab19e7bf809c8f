// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api"

	"github.com/track360/server/models"
)

var ErrMissingSecret = errors.New("signing secret is not configured")

// Signer issues direct-upload authorizations for the media host. It holds
// no state beyond credentials; expiry is enforced by the host.
type Signer struct {
	cloudName string
	apiKey    string
	apiSecret string
	folder    string
	now       func() time.Time
}

// NewSigner creates a signer for uploads into folder.
func NewSigner(cloudName, apiKey, apiSecret, folder string) *Signer {
	return &Signer{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		folder:    folder,
		now:       time.Now,
	}
}

// UploadParams returns the parameters a client must send alongside the
// signature for the given unix timestamp.
func (s *Signer) UploadParams(timestamp int64) url.Values {
	return url.Values{
		"timestamp":     {strconv.FormatInt(timestamp, 10)},
		"folder":        {s.folder},
		"resource_type": {"video"},
	}
}

// SignUpload signs an upload request stamped with the current time.
func (s *Signer) SignUpload() (*models.SignUploadResponse, error) {
	return s.SignUploadAt(s.now().Unix())
}

// SignUploadAt signs an upload request for an explicit unix timestamp.
func (s *Signer) SignUploadAt(timestamp int64) (*models.SignUploadResponse, error) {
	if s.apiSecret == "" {
		return nil, ErrMissingSecret
	}

	signature, err := api.SignParameters(s.UploadParams(timestamp), s.apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign upload: %w", err)
	}

	return &models.SignUploadResponse{
		Timestamp: timestamp,
		Signature: signature,
		APIKey:    s.apiKey,
		CloudName: s.cloudName,
	}, nil
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package media moves video bytes to the media host.

Host is the port the upload handlers depend on. Cloudinary is the production
adapter; tests substitute an in-memory host (see package testutil).

Upload blocks until the host answers and honors ctx, so a client that
disconnects mid-request cancels the transfer. Any failure is reported as
ErrUploadFailed wrapped with the host's message.
*/
package media

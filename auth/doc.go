// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth issues signed direct-upload authorizations.

# Signed Uploads

A client that wants to upload straight to the media host asks the server for
a signature:

	signer := auth.NewSigner(cloudName, apiKey, apiSecret, "processed-videos")
	resp, err := signer.SignUpload()

The signed parameters are timestamp, folder and resource_type=video. The
signature is the media host's standard request signature over those
parameters and the account secret, so the secret never leaves the server.

The response carries the timestamp, the signature, the public API key and the
cloud name. Nothing is persisted. Expiry is enforced by the media host, which
rejects stale timestamps.
*/
package auth

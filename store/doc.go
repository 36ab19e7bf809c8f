// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists the two record kinds behind a single Store interface.

Backends:
  - MongoStore: collections "unprocessed" and "processed" in one database.
    Record ids are the hex form of the document ObjectID.
  - SQLStore: postgres or sqlite tables created by package db. Ids use the
    same 24 hex character format so clients never see a difference.

Record lifecycle:

	CreateUnprocessed  processed=false, no processedId
	LinkProcessed      new processed record copies videoUrl and location,
	                   source becomes processed=true with processedId set

LinkProcessed is atomic on SQL backends and on MongoDB when transactions
are enabled (replica set required). Lookups return ErrInvalidID for
malformed ids and ErrNotFound for unknown ones.

Integration tests against a real MongoDB run with:

	go test -tags integration ./store/...
*/
package store

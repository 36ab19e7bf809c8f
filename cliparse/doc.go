// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Sources are layered, lowest precedence first:

 1. built-in defaults
 2. YAML file (-config or CONFIG_PATH)
 3. .env file (-env-file, default .env; never overrides set variables)
 4. environment variables
 5. CLI flags

# CLI Flags

	-p                  Server port
	-d                  Database URL
	-t                  Database type (mongodb, postgres, sqlite)
	-config             YAML config file
	-env-file           dotenv file
	-cloudinary-secret  Cloudinary API secret (prefer env)

# Environment Variables

	PORT                      port (default 3318)
	DATABASE_TYPE             mongodb | postgres | sqlite (default mongodb)
	DATABASE_URL              connection string (required)
	DATABASE_NAME             MongoDB database (default track360)
	DATABASE_TRANSACTIONS     MongoDB multi-document transactions (default true)
	CLOUDINARY_CLOUD_NAME     media host account (required)
	CLOUDINARY_API_KEY        media host key (required)
	CLOUDINARY_API_SECRET     media host secret (required)
	MEDIA_UNPROCESSED_FOLDER  default unprocessed-videos
	MEDIA_PROCESSED_FOLDER    default processed-videos
	UPLOAD_MAX_SIZE           multipart cap, e.g. 100MB (default)
	LOG_LEVEL, LOG_FORMAT     info/json by default
	CORS_ORIGINS              comma separated (default *)
	RATE_LIMIT_REQUESTS       per client per window (default 100, 0 disables)
	RATE_LIMIT_WINDOW         default 1m
	SEED_ENABLED              GET /api/seed allowed (default true)
	SHUTDOWN_TIMEOUT          graceful shutdown (default 10s)

Credentials are only ever read from the environment, a .env file, a config
file or flags. Use Redacted before logging a Config.
*/
package cliparse

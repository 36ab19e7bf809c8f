// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package stats computes dashboard statistics from stored records.

Counts come from the unprocessed collection; everything else is read from
the extraData of processed records:

	{"rider": "Asha", "reward": 10, "title": "Main St",
	 "detections": [{"type": "pothole"}, "garbage"]}

detections may also be an object of counts ({"pothole": 2}). Records whose
extraData is missing or malformed still count as processed videos but
contribute no riders, rewards or detections.
*/
package stats

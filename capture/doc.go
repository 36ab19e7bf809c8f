// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package capture records geotagged clips on the rider side.

An Acquirer opens the camera stream and fixes the device position at the
same time; both must succeed before recording is possible, and a failure is
reported as a *PermissionError whose Message is ready to display.

A Recorder then runs one clip at a time:

	idle -> recording -> processing -> success -> idle (after ResetDelay)
	                  \             \-> error
	                   \-> error (no data recorded)

Recording stops when the countdown reaches zero or on Stop. A clip with no
chunks is never uploaded. The position sent with the clip is read again at
upload time.

FileCamera, NewFileRecorder and FixedLocator let the same state machine run
from a video file, which is how cmd/track360ctl records.
*/
package capture

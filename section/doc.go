// Package section defines the fixed-size binary structures of a DUM stream:
// the file header and the frame record header.
//
// # Stream Structure
//
// All integers are unsigned and big-endian.
//
//	┌─────────────────────────────────────────────┐
//	│ Header (15 bytes, fixed)                    │
//	│  - Magic "dumv" (4 bytes)                   │
//	│  - FrameRate (1 byte)                       │
//	│  - Width, Height (2 bytes each)             │
//	│  - HScale, VScale (1 byte each)             │
//	│  - FrameCount (4 bytes)                     │
//	├─────────────────────────────────────────────┤
//	│ Frame record × FrameCount                   │
//	│  - Tag (1 byte)                             │
//	│  - PayloadSize (4 bytes)                    │
//	│  - Payload (PayloadSize bytes)              │
//	└─────────────────────────────────────────────┘
//
// There is no frame index: a reader locates frame n by walking the records
// before it, skipping each payload by its PayloadSize.
package section

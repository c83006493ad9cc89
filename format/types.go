package format

import "strings"

type (
	FrameType       uint8
	Quality         uint8
	CompressionType uint8
)

const (
	FrameRaw         FrameType = 0x1 // FrameRaw represents uncompressed RGB triplets.
	FrameColorMapped FrameType = 0x2 // FrameColorMapped represents a palette plus one index byte per pixel.
	FrameQuantized16 FrameType = 0x3 // FrameQuantized16 represents run-length encoded 15-bit colors.
	FrameQuantized8  FrameType = 0x4 // FrameQuantized8 represents run-length encoded 7-bit colors.
	FrameRepeated    FrameType = 0x5 // FrameRepeated reuses the previously decoded frame.

	QualityLow      Quality = 0x0 // QualityLow selects FrameQuantized8.
	QualityMedium   Quality = 0x1 // QualityMedium selects FrameQuantized16.
	QualityLossless Quality = 0x2 // QualityLossless selects FrameRaw.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

// IsValid reports whether t is one of the five frame record tags.
func (t FrameType) IsValid() bool {
	return t >= FrameRaw && t <= FrameRepeated
}

func (t FrameType) String() string {
	switch t {
	case FrameRaw:
		return "Raw"
	case FrameColorMapped:
		return "ColorMapped"
	case FrameQuantized16:
		return "Quantized16"
	case FrameQuantized8:
		return "Quantized8"
	case FrameRepeated:
		return "Repeated"
	default:
		return "Unknown"
	}
}

// IsValid reports whether q is a known quality level.
func (q Quality) IsValid() bool {
	return q <= QualityLossless
}

// FrameType returns the frame codec used for frames that cannot be color-mapped.
func (q Quality) FrameType() FrameType {
	switch q {
	case QualityLow:
		return FrameQuantized8
	case QualityMedium:
		return FrameQuantized16
	case QualityLossless:
		return FrameRaw
	default:
		return 0
	}
}

func (q Quality) String() string {
	switch q {
	case QualityLow:
		return "Low"
	case QualityMedium:
		return "Medium"
	case QualityLossless:
		return "Lossless"
	default:
		return "Unknown"
	}
}

// ParseQuality maps a quality name ("low", "medium" or "lossless", any case) to a Quality.
func ParseQuality(name string) (Quality, bool) {
	switch strings.ToLower(name) {
	case "low":
		return QualityLow, true
	case "medium":
		return QualityMedium, true
	case "lossless":
		return QualityLossless, true
	default:
		return 0, false
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompression maps a compression name to a CompressionType.
func ParseCompression(name string) (CompressionType, bool) {
	switch strings.ToLower(name) {
	case "none":
		return CompressionNone, true
	case "zstd":
		return CompressionZstd, true
	case "s2":
		return CompressionS2, true
	case "lz4":
		return CompressionLZ4, true
	default:
		return 0, false
	}
}

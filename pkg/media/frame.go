package media

// Frame is a single decoded picture. Pixels is an owned RGB24 buffer of
// Width*Height*3 bytes; the decoder hands over a fresh allocation per frame
// and never aliases it afterwards, so a Frame can cross goroutines freely.
type Frame struct {
	Pixels []byte
	Width  int
	Height int

	// Timestamp is the presentation time in seconds from stream start.
	Timestamp float64
}

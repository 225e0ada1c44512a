package langdetect

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Detector reports the ISO 639-1 code of a text. ok=false means detection
// could not decide (text too short or ambiguous); callers treat that as
// unknown, not as an error.
type Detector interface {
	Detect(text string) (code string, ok bool)
}

type linguaDetector struct {
	detector lingua.LanguageDetector
}

// New builds a detector over all spoken languages. Construction is expensive
// (language models are loaded once); share the instance across batches.
func New() Detector {
	return &linguaDetector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromAllSpokenLanguages().
			Build(),
	}
}

func (d *linguaDetector) Detect(text string) (string, bool) {
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

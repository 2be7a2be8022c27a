package stellar

import (
	"strings"

	"github.com/mdp/qrterminal/v3"
)

// GenerateQRCode renders content as a half-block terminal QR code.
func GenerateQRCode(content string) string {
	if content == "" {
		return ""
	}
	var b strings.Builder
	qrterminal.GenerateWithConfig(content, qrterminal.Config{
		Level:          qrterminal.L,
		Writer:         &b,
		HalfBlocks:     true,
		BlackChar:      qrterminal.BLACK_BLACK,
		WhiteBlackChar: qrterminal.WHITE_BLACK,
		WhiteChar:      qrterminal.WHITE_WHITE,
		BlackWhiteChar: qrterminal.BLACK_WHITE,
		QuietZone:      1,
	})
	return strings.TrimRight(b.String(), "\n")
}

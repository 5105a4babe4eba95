package services

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"

	types "github.com/versatil/versatil-backend/internal/domain"
	"github.com/versatil/versatil-backend/internal/platform/gcp"
	"github.com/versatil/versatil-backend/internal/platform/logger"
)

const avatarSize = 512

var avatarPalette = []color.NRGBA{
	{R: 0x1A, G: 0x73, B: 0xE8, A: 0xFF},
	{R: 0x0F, G: 0x9D, B: 0x58, A: 0xFF},
	{R: 0xF4, G: 0xB4, B: 0x00, A: 0xFF},
	{R: 0xDB, G: 0x44, B: 0x37, A: 0xFF},
	{R: 0x8E, G: 0x24, B: 0xAA, A: 0xFF},
	{R: 0x00, G: 0x89, B: 0x7B, A: 0xFF},
	{R: 0xE6, G: 0x51, B: 0x00, A: 0xFF},
	{R: 0x5C, G: 0x6B, B: 0xC0, A: 0xFF},
}

type AvatarService interface {
	// Render draws the initials avatar for user as a PNG.
	Render(user *types.User) ([]byte, error)
	// Assign sets the user's avatar fields, uploading to the bucket when one is configured.
	Assign(ctx context.Context, user *types.User) error
}

type avatarService struct {
	log           *logger.Logger
	bucketService gcp.BucketService

	// fontFace caches glyphs and is not safe for concurrent use.
	fontMu   sync.Mutex
	fontFace font.Face
}

// NewAvatarService loads the embedded Go font. bucketService may be nil, in
// which case avatars are rendered on request.
func NewAvatarService(log *logger.Logger, bucketService gcp.BucketService) (AvatarService, error) {
	parsed, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse avatar font: %w", err)
	}
	face := truetype.NewFace(parsed, &truetype.Options{
		Size:    206,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	return &avatarService{
		log:           log.With("service", "AvatarService"),
		bucketService: bucketService,
		fontFace:      face,
	}, nil
}

func LocalAvatarURL(user *types.User) string {
	return "/api/users/" + user.ID.String() + "/avatar"
}

func (as *avatarService) Assign(ctx context.Context, user *types.User) error {
	if user == nil {
		return fmt.Errorf("user required")
	}
	if as.bucketService == nil {
		user.AvatarURL = LocalAvatarURL(user)
		return nil
	}
	png, err := as.Render(user)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("user_avatar/%s/%d.png", user.ID.String(), time.Now().UnixNano())
	if err := as.bucketService.UploadFile(ctx, key, bytes.NewReader(png)); err != nil {
		as.log.Warn("avatar upload failed; serving locally", "user_id", user.ID, "error", err)
		user.AvatarURL = LocalAvatarURL(user)
		return nil
	}
	user.AvatarBucketKey = key
	user.AvatarURL = as.bucketService.GetPublicURL(key)
	return nil
}

func (as *avatarService) Render(user *types.User) ([]byte, error) {
	if user == nil {
		return nil, fmt.Errorf("user required")
	}
	dc := gg.NewContext(avatarSize, avatarSize)

	dc.DrawCircle(avatarSize/2, avatarSize/2, avatarSize/2)
	dc.Clip()

	dc.SetColor(avatarPalette[int(user.ID[0])%len(avatarPalette)])
	dc.DrawRectangle(0, 0, avatarSize, avatarSize)
	dc.Fill()

	as.fontMu.Lock()
	dc.SetFontFace(as.fontFace)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(computeInitials(user.Name), avatarSize/2, avatarSize/2, 0.5, 0.35)
	as.fontMu.Unlock()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// computeInitials takes the first letter of the first and last words of name.
func computeInitials(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return unicode.IsSpace(r) || r == '-' })
	first := func(w string) string {
		r, _ := utf8.DecodeRuneInString(w)
		return strings.ToUpper(string(r))
	}
	switch len(words) {
	case 0:
		return "?"
	case 1:
		return first(words[0])
	default:
		return first(words[0]) + first(words[len(words)-1])
	}
}

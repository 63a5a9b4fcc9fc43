// Package services provides external service integrations and technical concerns like captchas and tokens
package services

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wenlng/go-captcha/v2/rotate"
)

// CaptchaService guards the admin login form with a rotation captcha.
//
// Flow:
// - Generate returns a challenge ID plus two base64 images (master and thumb)
// - Verify checks a user-provided angle against the stored target with tolerance
// - Challenges live in memory with a TTL and are consumed on first verify
type CaptchaService interface {
	Generate(ctx context.Context) (*RotateChallenge, error)
	Verify(ctx context.Context, challengeID string, userAngle float64) bool
}

type RotateChallenge struct {
	ID                string
	MasterImageBase64 string
	ThumbImageBase64  string
}

type captchaServiceImpl struct {
	rotator rotate.Captcha
	store   *challengeStore
	padding int // tolerance for angle validation, degrees
}

// NewCaptchaService constructs a rotate-mode captcha service.
// ttl bounds how long a challenge stays answerable, padding is the accepted
// angle error in degrees, imgSizePx the square image size (e.g. 220).
func NewCaptchaService(ttl time.Duration, padding int, imgSizePx int) (CaptchaService, error) {
	if imgSizePx <= 0 {
		imgSizePx = 220
	}

	builder := rotate.NewBuilder(
		rotate.WithImageSquareSize(imgSizePx),
	)
	builder.SetResources(
		rotate.WithImages(captchaBackgrounds(3, imgSizePx)),
	)

	return &captchaServiceImpl{
		rotator: builder.Make(),
		store:   newChallengeStore(ttl),
		padding: padding,
	}, nil
}

func (s *captchaServiceImpl) Generate(ctx context.Context) (*RotateChallenge, error) {
	captData, err := s.rotator.Generate()
	if err != nil {
		return nil, err
	}

	block := captData.GetData()
	if block == nil {
		return nil, errors.New("captcha generation returned no block data")
	}

	masterB64, err := captData.GetMasterImage().ToBase64()
	if err != nil {
		return nil, err
	}
	thumbB64, err := captData.GetThumbImage().ToBase64()
	if err != nil {
		return nil, err
	}

	challengeID := uuid.New().String()
	s.store.Set(challengeID, block.Angle)

	return &RotateChallenge{
		ID:                challengeID,
		MasterImageBase64: masterB64,
		ThumbImageBase64:  thumbB64,
	}, nil
}

func (s *captchaServiceImpl) Verify(ctx context.Context, challengeID string, userAngle float64) bool {
	targetAngle, ok := s.store.Take(challengeID)
	if !ok {
		return false
	}

	return rotate.Validate(int(math.Round(userAngle)), targetAngle, s.padding)
}

// --- In-memory challenge store with TTL ---

type challengeEntry struct {
	targetAngle int
	expiresAt   time.Time
}

type challengeStore struct {
	mu  sync.Mutex
	m   map[string]challengeEntry
	ttl time.Duration
}

func newChallengeStore(ttl time.Duration) *challengeStore {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	cs := &challengeStore{
		m:   make(map[string]challengeEntry),
		ttl: ttl,
	}
	go cs.cleanupLoop()
	return cs
}

func (s *challengeStore) Set(id string, targetAngle int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = challengeEntry{
		targetAngle: targetAngle,
		expiresAt:   time.Now().Add(s.ttl),
	}
}

// Take returns and removes a challenge, so each one is answerable once.
func (s *challengeStore) Take(id string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[id]
	if !ok {
		return 0, false
	}
	delete(s.m, id)
	if time.Now().After(e.expiresAt) {
		return 0, false
	}
	return e.targetAngle, true
}

func (s *challengeStore) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		s.mu.Lock()
		for k, v := range s.m {
			if now.After(v.expiresAt) {
				delete(s.m, k)
			}
		}
		s.mu.Unlock()
	}
}

// --- Generated background images ---

func captchaBackgrounds(n int, size int) []image.Image {
	if n <= 0 {
		n = 1
	}
	imgs := make([]image.Image, 0, n)
	for i := 0; i < n; i++ {
		imgs = append(imgs, newSpeckledGradient(size, size, int64(i)))
	}
	return imgs
}

func newSpeckledGradient(w, h int, seed int64) image.Image {
	rng := rand.New(rand.NewSource(seed + 1))
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t := float64(x+y) / float64(w+h)
			base := uint8(80 + int(140*t))
			noise := uint8(rng.Intn(25))
			rgba.Set(x, y, color.RGBA{R: base - base/3, G: base, B: 230 - base/2 + noise, A: 255})
		}
	}

	// Scatter rings so rotation is visually trackable.
	for i := 0; i < 12; i++ {
		cx := rng.Intn(w)
		cy := rng.Intn(h)
		r := 4 + rng.Intn(w/10)
		c := color.RGBA{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: 90}
		drawRing(rgba, cx, cy, r, c)
	}
	return rgba
}

func drawRing(dst *image.RGBA, cx, cy, r int, c color.RGBA) {
	for deg := 0; deg < 360; deg++ {
		rad := float64(deg) * math.Pi / 180
		x := cx + int(float64(r)*math.Cos(rad))
		y := cy + int(float64(r)*math.Sin(rad))
		if image.Pt(x, y).In(dst.Bounds()) {
			dst.Set(x, y, c)
		}
	}
}

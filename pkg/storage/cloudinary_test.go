package storage

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPublicID(t *testing.T) {
	cases := map[string]string{
		"https://res.cloudinary.com/demo/image/upload/v123456789/avatars/sample.jpg": "avatars/sample",
		"https://res.cloudinary.com/demo/image/upload/avatars/sample.webp":           "avatars/sample",
		"https://res.cloudinary.com/demo/image/upload/video/intro.webp":              "video/intro",
		"https://res.cloudinary.com/demo/image/upload/":                              "",
		"https://example.com/no-upload-segment/file.png":                             "",

		"::not a url": "",
	}

	for in, want := range cases {
		assert.Equal(t, want, extractPublicID(in), in)
	}
}

func TestJoin(t *testing.T) {
	s := &cloudinaryStorage{folder: "portal_sekolah"}
	assert.Equal(t, "portal_sekolah/materials/7/attachment.pdf", s.join("/materials/7/attachment.pdf"))

	bare := &cloudinaryStorage{}
	assert.Equal(t, "materials/7/attachment.pdf", bare.join("materials/7/attachment.pdf"))
}

func TestSignedURLIsAuthenticatedAndExpiring(t *testing.T) {
	cld, err := cloudinary.NewFromParams("demo", "1234567890", "s3cr3t")
	require.NoError(t, err)
	s := &cloudinaryStorage{cld: cld, folder: "portal_sekolah"}

	before := time.Now()
	signed, err := s.SignedURL(context.Background(), "materials/7/attachment.pdf", time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	q := u.Query()

	assert.Contains(t, u.Path, "/demo/raw/download")
	assert.Equal(t, "authenticated", q.Get("type"))
	assert.Equal(t, "portal_sekolah/materials/7/attachment.pdf", q.Get("public_id"))
	assert.Equal(t, "1234567890", q.Get("api_key"))
	assert.NotEmpty(t, q.Get("signature"))

	expiresAt, err := time.Parse(time.RFC3339Nano, q.Get("expires_at"))
	require.NoError(t, err)
	assert.WithinDuration(t, before.Add(time.Hour), expiresAt, time.Minute)
}

func TestUninitializedStorageFails(t *testing.T) {
	var s *cloudinaryStorage
	_, err := s.SignedURL(context.Background(), "materials/1/attachment.pdf", time.Minute)
	assert.Error(t, err)
}

package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCleanKey(t *testing.T) {
	for _, bad := range []string{"", "/abs/path.png", "../escape.png", "a/../../b", "..", `a\b.png`} {
		_, err := cleanKey(bad)
		assert.ErrorIs(t, err, ErrInvalidKey, bad)
	}

	key, err := cleanKey("uploads/recipe/./x.png")
	require.NoError(t, err)
	assert.Equal(t, "uploads/recipe/x.png", key)
}

func TestLocalStorage_SaveDelete(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStorage(root, "http://localhost:8080/media/")
	require.NoError(t, err)
	ctx := context.Background()

	data := pngBytes(t)
	require.NoError(t, s.Save(ctx, "uploads/recipe/a.png", data, "image/png"))

	onDisk, err := os.ReadFile(filepath.Join(root, "uploads", "recipe", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, data, onDisk)
	assert.Equal(t, "http://localhost:8080/media/uploads/recipe/a.png", s.URL("uploads/recipe/a.png"))

	require.NoError(t, s.Delete(ctx, "uploads/recipe/a.png"))
	_, err = os.Stat(filepath.Join(root, "uploads", "recipe", "a.png"))
	assert.True(t, os.IsNotExist(err))

	// Deleting twice is fine.
	assert.NoError(t, s.Delete(ctx, "uploads/recipe/a.png"))
}

func TestLocalStorage_RejectsEscapingKeys(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "/media")
	require.NoError(t, err)

	err = s.Save(context.Background(), "../outside.png", pngBytes(t), "image/png")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

type fakeS3 struct {
	puts    map[string][]byte
	types   map[string]string
	deletes []string
	err     error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(in.Body); err != nil {
		return nil, err
	}
	f.puts[*in.Bucket+"/"+*in.Key] = buf.Bytes()
	f.types[*in.Key] = *in.ContentType
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deletes = append(f.deletes, *in.Bucket+"/"+*in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Storage(t *testing.T) {
	fake := &fakeS3{puts: map[string][]byte{}, types: map[string]string{}}
	s := newS3Storage(fake, "recipes", "https://cdn.example.com")
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "uploads/recipe/a.png", []byte("data"), "image/png"))
	assert.Equal(t, []byte("data"), fake.puts["recipes/uploads/recipe/a.png"])
	assert.Equal(t, "image/png", fake.types["uploads/recipe/a.png"])

	require.NoError(t, s.Delete(ctx, "uploads/recipe/a.png"))
	assert.Equal(t, []string{"recipes/uploads/recipe/a.png"}, fake.deletes)

	assert.Equal(t, "https://cdn.example.com/uploads/recipe/a.png", s.URL("uploads/recipe/a.png"))

	fake.err = errors.New("boom")
	assert.Error(t, s.Save(ctx, "uploads/recipe/b.png", []byte("x"), "image/png"))
}

func TestValidateImage(t *testing.T) {
	info, err := ValidateImage(pngBytes(t))
	require.NoError(t, err)
	assert.Equal(t, "png", info.Format)
	assert.Equal(t, ".png", info.Extension)
	assert.Equal(t, "image/png", info.ContentType)
	assert.Equal(t, 10, info.Width)
}

func TestValidateImage_Invalid(t *testing.T) {
	data := pngBytes(t)

	for name, payload := range map[string][]byte{
		"empty":     nil,
		"text":      []byte("notanimage"),
		"truncated": data[:len(data)/2],
	} {
		_, err := ValidateImage(payload)
		assert.ErrorIs(t, err, ErrInvalidImage, name)
	}
}

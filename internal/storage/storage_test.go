package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/coreapp/internal/config"
	"github.com/ignite/coreapp/internal/domain"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNew_SelectsBackend(t *testing.T) {
	s, err := New(context.Background(), config.StorageConfig{Type: "local", LocalPath: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, s)

	_, err = New(context.Background(), config.StorageConfig{Type: "ftp"})
	assert.Error(t, err)
}

func TestLocalStore_RoundTrip(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "files/a.txt", []byte("hello"), "text/plain"))

	ok, err := s.Exists(ctx, "files/a.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := s.Get(ctx, "files/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, s.Delete(ctx, "files/a.txt"))
	_, err = s.Get(ctx, "files/a.txt")
	assert.ErrorIs(t, err, ErrNotExist)
	assert.NoError(t, s.Delete(ctx, "files/a.txt"))
}

func TestLocalStore_Ping(t *testing.T) {
	root := filepath.Join(t.TempDir(), "uploads")
	s, err := NewLocalStore(root)
	require.NoError(t, err)
	assert.NoError(t, s.Ping(context.Background()))

	require.NoError(t, os.RemoveAll(root))
	assert.Error(t, s.Ping(context.Background()))
}

func TestLocalStore_RejectsEscapingKeys(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../etc/passwd", "/abs/path"} {
		err := s.Put(context.Background(), key, []byte("x"), "")
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}
}

func TestUploader_SaveFile(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	u := NewUploader(s, 1024)
	ctx := context.Background()

	key, err := u.SaveFile(ctx, `C:\Users\me\My Report.pdf`, strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "files/My_Report.pdf", key)

	// Same name again gets a suffix rather than overwriting.
	key2, err := u.SaveFile(ctx, "My Report.pdf", strings.NewReader("%PDF-1.5"))
	require.NoError(t, err)
	assert.NotEqual(t, key, key2)
	assert.True(t, strings.HasPrefix(key2, "files/My_Report_"))
	assert.True(t, strings.HasSuffix(key2, ".pdf"))

	first, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(first))
}

func TestUploader_KeyFitsColumn(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	u := NewUploader(s, 1024)
	ctx := context.Background()

	name := strings.Repeat("n", 150) + ".txt"
	for i := 0; i < 2; i++ {
		key, err := u.SaveFile(ctx, name, strings.NewReader("data"))
		require.NoError(t, err)
		assert.LessOrEqual(t, len(key), domain.PathMaxLength)
		assert.True(t, strings.HasSuffix(key, ".txt"))
	}
}

func TestUploader_Limits(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	u := NewUploader(s, 4)

	_, err = u.SaveFile(context.Background(), "big.bin", strings.NewReader("12345"))
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = u.SaveFile(context.Background(), "empty.bin", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyUpload)
}

func TestUploader_SaveImage(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	u := NewUploader(s, 1<<20)
	ctx := context.Background()

	key, err := u.SaveImage(ctx, "pixel.png", bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)
	assert.Equal(t, "images/pixel.png", key)

	_, err = u.SaveImage(ctx, "fake.png", strings.NewReader("not an image at all"))
	assert.ErrorIs(t, err, ErrNotImage)

	truncated := pngBytes(t)[:20]
	_, err = u.SaveImage(ctx, "broken.png", bytes.NewReader(truncated))
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestUploader_OpenAndDiscard(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	u := NewUploader(s, 1<<20)
	ctx := context.Background()

	imgKey, err := u.SaveImage(ctx, "pixel.png", bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)
	data, contentType, err := u.Open(ctx, imgKey)
	require.NoError(t, err)
	assert.Equal(t, pngBytes(t), data)
	assert.Equal(t, "image/png", contentType)

	fileKey, err := u.SaveFile(ctx, "notes.txt", strings.NewReader("hello"))
	require.NoError(t, err)
	_, contentType, err = u.Open(ctx, fileKey)
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", contentType)

	require.NoError(t, u.Discard(ctx, fileKey))
	_, _, err = u.Open(ctx, fileKey)
	assert.ErrorIs(t, err, ErrNotExist)
	assert.NoError(t, u.Discard(ctx, fileKey), "discarding twice")
}

func TestVerifyImage(t *testing.T) {
	format, err := VerifyImage(pngBytes(t))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "image/png", detectContentType(pngBytes(t)))
	assert.Equal(t, "image/jpeg", detectContentType([]byte{0xFF, 0xD8, 0xFF}))
	assert.Equal(t, "image/gif", detectContentType([]byte("GIF89a")))
	assert.Equal(t, "image/webp", detectContentType([]byte("RIFF\x00\x00\x00\x00WEBP")))
	assert.Equal(t, "application/octet-stream", detectContentType([]byte("hello")))
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"report.pdf":          "report.pdf",
		"../../etc/passwd":    "passwd",
		`C:\tmp\photo 1.jpg`:  "photo_1.jpg",
		"a..b.txt":            "ab.txt",
		"tab\there.txt":       "tabhere.txt",
		"":                    "",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeFilename(in), "input %q", in)
	}
}

func TestFilePathChoices(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("b"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "c.txt"), []byte("c"), 0644))

	choices, err := FilePathChoices(root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a.txt"), filepath.Join(root, "b.txt")}, choices)

	_, err = FilePathChoices(filepath.Join(root, "missing"))
	assert.Error(t, err)
}

// fakeS3 is an in-memory S3API.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &smithy.GenericAPIError{Code: "NotFound", Message: "Not Found"}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(_ context.Context, _ *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, nil
}

func TestS3Store_RoundTrip(t *testing.T) {
	fake := newFakeS3()
	s := NewS3StoreWithClient(fake, "uploads")
	ctx := context.Background()

	ok, err := s.Exists(ctx, "images/x.png")
	require.NoError(t, err)
	assert.False(t, ok)

	u := NewUploader(s, 1<<20)
	key, err := u.SaveImage(ctx, "x.png", bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)
	assert.Equal(t, "images/x.png", key)
	assert.Equal(t, "image/png", fake.types[key])

	data, contentType, err := u.Open(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, pngBytes(t), data)
	assert.Equal(t, "image/png", contentType)

	require.NoError(t, u.Discard(ctx, key))
	_, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotExist)

	assert.NoError(t, s.Ping(ctx))
	assert.Equal(t, "uploads", s.Bucket())
}

package decode

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"sync"

	"github.com/vidframe/frameserver/internal/decoderpool"
	"github.com/vidframe/frameserver/internal/fileid"
	"github.com/vidframe/frameserver/internal/pixfmt"
)

// FFmpeg decodes one frame by shelling out to an ffmpeg binary and
// reading raw pixel data back from its stdout. The frame cache never
// knows this type exists, only the framecache.Decoder method set it
// happens to satisfy.
type FFmpeg struct {
	// Binary is the ffmpeg executable to run. Defaults to "ffmpeg" on
	// PATH.
	Binary string

	// Paths resolves a fingerprint's file id back to a filesystem
	// path. Required.
	Paths PathResolver

	// FrameRate converts a frame index into a -ss seek offset in
	// seconds. Defaults to 25.
	FrameRate float64

	// Pool, if set, serializes concurrent decodes of the same file so
	// that a burst of requests for one file doesn't spawn one ffmpeg
	// process per request; requests for distinct files still decode
	// concurrently. Which files keep a warm slot under load is decided
	// by the pool's own admission policy. Nil disables serialization
	// entirely.
	Pool *decoderpool.Pool
}

// fileSlot is the decoderpool.Slot for one file: a mutex a decode holds
// for the duration of one ffmpeg invocation. It owns no process or
// file handle, so evicting it costs nothing beyond losing the
// serialization until the next Decode call recreates it.
type fileSlot struct {
	mu sync.Mutex
}

func (*fileSlot) Close() {}

// slotFor returns the fileSlot reserved for id, creating and
// registering one if the pool doesn't already have it.
func (d *FFmpeg) slotFor(id fileid.ID) *fileSlot {
	if d.Pool == nil {
		return nil
	}
	if s, ok := d.Pool.Get(id); ok {
		return s.(*fileSlot)
	}
	s := &fileSlot{}
	d.Pool.Put(id, s)
	return s
}

func (d *FFmpeg) binary() string {
	if d.Binary == "" {
		return "ffmpeg"
	}
	return d.Binary
}

func (d *FFmpeg) frameRate() float64 {
	if d.FrameRate <= 0 {
		return 25
	}
	return d.FrameRate
}

func ffmpegPixFmt(f pixfmt.Format) (string, error) {
	switch f {
	case pixfmt.RGB24:
		return "rgb24", nil
	case pixfmt.RGBA32:
		return "rgba", nil
	case pixfmt.Gray8:
		return "gray", nil
	case pixfmt.YUV420P:
		return "yuv420p", nil
	default:
		return "", fmt.Errorf("decode: unsupported pixel format %d", f)
	}
}

// Decode implements framecache.Decoder.
func (d *FFmpeg) Decode(ctx context.Context, fileID fileid.ID, frame int64, dst []byte, w, h int, format pixfmt.Format) error {
	if d.Paths == nil {
		return fmt.Errorf("decode: FFmpeg.Paths is nil")
	}
	path, ok := d.Paths.Path(fileID)
	if !ok {
		return unresolvedPathError{id: fileID}
	}
	pixFmt, err := ffmpegPixFmt(format)
	if err != nil {
		return err
	}

	if slot := d.slotFor(fileID); slot != nil {
		slot.mu.Lock()
		defer slot.mu.Unlock()
	}

	seconds := float64(frame) / d.frameRate()
	args := []string{
		"-v", "error",
		"-ss", strconv.FormatFloat(seconds, 'f', 6, 64),
		"-i", path,
		"-frames:v", "1",
		"-f", "rawvideo",
		"-pix_fmt", pixFmt,
		"-s", fmt.Sprintf("%dx%d", w, h),
		"pipe:1",
	}

	cmd := exec.CommandContext(ctx, d.binary(), args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("decode: ffmpeg: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}
	if len(out) != len(dst) {
		return fmt.Errorf("decode: ffmpeg produced %d bytes, want %d", len(out), len(dst))
	}
	copy(dst, out)
	return nil
}

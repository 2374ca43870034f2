package extract

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/sleeve/internal/domain"
	"github.com/mmcdole/sleeve/internal/log"
)

// fakeFFmpeg writes an executable shell script standing in for ffmpeg.
// body runs with $out set to the destination argument.
func fakeFFmpeg(t *testing.T, body string) (binary, argsFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake ffmpeg needs /bin/sh")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	dir := t.TempDir()
	argsFile = filepath.Join(dir, "args.txt")
	script := "#!/bin/sh\n" +
		"printf '%s\\n' \"$@\" > '" + argsFile + "'\n" +
		"for a in \"$@\"; do out=\"$a\"; done\n" +
		body + "\n"
	binary = filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(binary, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return binary, argsFile
}

func TestFFmpegExtractor_Args(t *testing.T) {
	e := NewFFmpegExtractor("", 0, log.NullLogger())
	got := e.Args("/m/a.flac", "/tmp/out.jpg")
	want := []string{"-nostdin", "-loglevel", "error", "-y", "-i", "file:/m/a.flac", "-an", "-vcodec", "copy", "/tmp/out.jpg"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Args() = %v, want %v", got, want)
	}
}

func TestFFmpegExtractor_Extract(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		timeout time.Duration
		wantErr error
	}{
		{
			name: "Success - picture written",
			body: `printf 'JPEGDATA' > "$out"`,
		},
		{
			name: "Success - non-zero exit but output readable",
			body: `printf 'JPEGDATA' > "$out"; exit 1`,
		},
		{
			name:    "No art - exit zero without output",
			body:    `exit 0`,
			wantErr: domain.ErrNoEmbeddedArt,
		},
		{
			name:    "No art - empty output removed",
			body:    `: > "$out"; exit 1`,
			wantErr: domain.ErrNoEmbeddedArt,
		},
		{
			name:    "Failure - hung process is killed",
			body:    `printf 'PART' > "$out"; exec sleep 10`,
			timeout: 200 * time.Millisecond,
			wantErr: domain.ErrExtractorFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			binary, _ := fakeFFmpeg(t, tt.body)
			dest := filepath.Join(t.TempDir(), "cover.jpg")

			e := NewFFmpegExtractor(binary, tt.timeout, log.NullLogger())
			err := e.Extract(context.Background(), "/music/track.flac", dest)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
					t.Errorf("partial output %s was not removed", dest)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			data, err := os.ReadFile(dest)
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != "JPEGDATA" {
				t.Errorf("dest = %q", data)
			}
		})
	}
}

func TestFFmpegExtractor_InjectionIsLiteral(t *testing.T) {
	binary, argsFile := fakeFFmpeg(t, `printf 'X' > "$out"`)

	dir := t.TempDir()
	canary := filepath.Join(dir, "canary")
	if err := os.WriteFile(canary, []byte("alive"), 0o644); err != nil {
		t.Fatal(err)
	}
	track := filepath.Join(dir, "$(rm -f "+canary+") `touch pwned` $HOME.flac")
	dest := filepath.Join(dir, "out.jpg")

	e := NewFFmpegExtractor(binary, time.Second, log.NullLogger())
	if err := e.Extract(context.Background(), track, dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(canary); err != nil {
		t.Fatalf("command substitution ran: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "pwned")); err == nil {
		t.Fatal("backtick substitution ran")
	}

	args, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(args), "file:"+track+"\n") {
		t.Errorf("input path was not passed literally, got args:\n%s", args)
	}
}

func TestFFmpegExtractor_MissingBinary(t *testing.T) {
	e := NewFFmpegExtractor(filepath.Join(t.TempDir(), "no-such-ffmpeg"), time.Second, log.NullLogger())
	err := e.Extract(context.Background(), "/music/a.flac", filepath.Join(t.TempDir(), "x.jpg"))
	if !errors.Is(err, domain.ErrExtractorFailed) {
		t.Fatalf("err = %v, want ErrExtractorFailed", err)
	}
	if e.Available() {
		t.Error("Available() = true for a missing binary")
	}
}

// id3WithPicture builds a minimal ID3v2.3 tag holding one APIC frame
func id3WithPicture(mime string, data []byte) []byte {
	var frame bytes.Buffer
	frame.WriteByte(0) // ISO-8859-1
	frame.WriteString(mime)
	frame.WriteByte(0)
	frame.WriteByte(3) // front cover
	frame.WriteByte(0) // empty description
	frame.Write(data)

	var body bytes.Buffer
	body.WriteString("APIC")
	binary.Write(&body, binary.BigEndian, uint32(frame.Len()))
	body.Write([]byte{0, 0})
	body.Write(frame.Bytes())

	size := body.Len()
	var tag bytes.Buffer
	tag.WriteString("ID3")
	tag.Write([]byte{3, 0, 0})
	tag.Write([]byte{
		byte(size >> 21 & 0x7f),
		byte(size >> 14 & 0x7f),
		byte(size >> 7 & 0x7f),
		byte(size & 0x7f),
	})
	tag.Write(body.Bytes())
	return tag.Bytes()
}

func TestTagExtractor_Extract(t *testing.T) {
	dir := t.TempDir()
	picture := []byte("\x89PNG fake picture bytes")

	withArt := filepath.Join(dir, "with.mp3")
	if err := os.WriteFile(withArt, append(id3WithPicture("image/png", picture), make([]byte, 64)...), 0o644); err != nil {
		t.Fatal(err)
	}
	noTags := filepath.Join(dir, "none.mp3")
	if err := os.WriteFile(noTags, bytes.Repeat([]byte{0xAB}, 256), 0o644); err != nil {
		t.Fatal(err)
	}

	e := NewTagExtractor(log.NullLogger())

	t.Run("Success - embedded picture", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "out.jpg")
		if err := e.Extract(context.Background(), withArt, dest); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, err := os.ReadFile(dest)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, picture) {
			t.Errorf("picture = %q, want %q", got, picture)
		}
	})

	t.Run("No art - untagged file", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "out.jpg")
		err := e.Extract(context.Background(), noTags, dest)
		if !errors.Is(err, domain.ErrNoEmbeddedArt) {
			t.Fatalf("err = %v, want ErrNoEmbeddedArt", err)
		}
		if _, err := os.Stat(dest); !os.IsNotExist(err) {
			t.Error("destination should not exist")
		}
	})

	t.Run("No art - missing file", func(t *testing.T) {
		err := e.Extract(context.Background(), filepath.Join(dir, "gone.mp3"), filepath.Join(t.TempDir(), "o.jpg"))
		if !errors.Is(err, domain.ErrNoEmbeddedArt) {
			t.Fatalf("err = %v, want ErrNoEmbeddedArt", err)
		}
	})
}

// stubExtractor returns a fixed error and counts calls
type stubExtractor struct {
	err   error
	calls int
}

func (s *stubExtractor) Extract(ctx context.Context, audioPath, destPath string) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	return os.WriteFile(destPath, []byte("img"), 0o644)
}

func TestChain_Extract(t *testing.T) {
	failed := errors.Join(domain.ErrExtractorFailed, errors.New("spawn"))
	noArt := domain.ErrNoEmbeddedArt

	tests := []struct {
		name      string
		chain     []*stubExtractor
		wantErr   error
		wantCalls []int
	}{
		{
			name:      "first success stops the chain",
			chain:     []*stubExtractor{{}, {}},
			wantCalls: []int{1, 0},
		},
		{
			name:      "falls through to second",
			chain:     []*stubExtractor{{err: failed}, {}},
			wantCalls: []int{1, 1},
		},
		{
			name:      "no art wins over process failure",
			chain:     []*stubExtractor{{err: failed}, {err: noArt}},
			wantErr:   domain.ErrNoEmbeddedArt,
			wantCalls: []int{1, 1},
		},
		{
			name:      "all failed",
			chain:     []*stubExtractor{{err: failed}},
			wantErr:   domain.ErrExtractorFailed,
			wantCalls: []int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractors := make([]domain.Extractor, len(tt.chain))
			for i, s := range tt.chain {
				extractors[i] = s
			}
			err := NewChain(extractors...).Extract(context.Background(), "a.flac", filepath.Join(t.TempDir(), "o.jpg"))
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			for i, s := range tt.chain {
				if s.calls != tt.wantCalls[i] {
					t.Errorf("extractor %d called %d times, want %d", i, s.calls, tt.wantCalls[i])
				}
			}
		})
	}
}

func TestNew_Modes(t *testing.T) {
	if _, err := New("bogus", "", 0, log.NullLogger()); err == nil {
		t.Error("expected error for unknown mode")
	}
	e, err := New(ModeTag, "", 0, log.NullLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := e.(*TagExtractor); !ok {
		t.Errorf("tag mode built %T", e)
	}
	e, err = New(ModeAuto, filepath.Join(t.TempDir(), "missing-ffmpeg"), 0, log.NullLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := e.(*TagExtractor); !ok {
		t.Errorf("auto mode without ffmpeg built %T", e)
	}
}

func TestScratchPath(t *testing.T) {
	a := ScratchPath("/tmp/s")
	b := ScratchPath("/tmp/s")
	if a == b {
		t.Error("scratch paths should be unique")
	}
	if !IsScratchFile(a) || filepath.Dir(a) != filepath.Clean("/tmp/s") {
		t.Errorf("unexpected scratch path %q", a)
	}
	if IsScratchFile("/music/cover.jpg") {
		t.Error("sidecar image reported as scratch file")
	}
}

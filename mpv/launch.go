package mpv

import (
	"errors"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/user/trimcrop-cli/deps"
)

// LaunchOptions configures one mpv process.
type LaunchOptions struct {
	// Binary is the mpv executable; "mpv" when empty.
	Binary string
	// SocketPath is the IPC socket mpv creates.
	SocketPath string
	// Target is a file path or stream URL.
	Target string
	// YtdlPath points mpv's ytdl hook at a resolved yt-dlp binary.
	YtdlPath string
	// Paused starts playback paused.
	Paused bool
	// Volume is the initial volume (0-100).
	Volume int
}

// Args builds the mpv command line.
func (o LaunchOptions) Args() []string {
	args := []string{
		"--input-ipc-server=" + o.SocketPath,
		"--keep-open=yes",
		"--force-window=yes",
		"--idle=no",
	}
	if o.Paused {
		args = append(args, "--pause")
	}
	if o.Volume > 0 {
		args = append(args, "--volume="+strconv.Itoa(o.Volume))
	}
	if o.YtdlPath != "" {
		args = append(args, "--ytdl=yes", "--script-opts=ytdl_hook-ytdl_path="+o.YtdlPath)
	} else {
		args = append(args, "--ytdl=no")
	}
	return append(args, o.Target)
}

// Process is a running mpv instance.
type Process struct {
	cmd        *exec.Cmd
	socketPath string
	once       sync.Once
	err        error
}

// Launch starts mpv with the IPC socket enabled.
// It checks that mpv is installed first and returns an error with install link if not.
func Launch(opts LaunchOptions) (*Process, error) {
	bin := opts.Binary
	if bin == "" {
		bin = "mpv"
	}
	if err := deps.CheckBinary(bin, deps.MpvInstallURL); err != nil {
		return nil, err
	}

	// A stale socket from a crashed run would make the first dial hit a dead listener.
	_ = os.Remove(opts.SocketPath)

	cmd := exec.Command(bin, opts.Args()...)

	// Start the process (non-blocking)
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	return &Process{cmd: cmd, socketPath: opts.SocketPath}, nil
}

// Stop kills the process, reaps it and removes its socket. Safe to call more than once.
func (p *Process) Stop() error {
	p.once.Do(func() {
		if p.cmd.Process != nil {
			if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
				p.err = err
			}
			_ = p.cmd.Wait()
		}
		_ = os.Remove(p.socketPath)
	})
	return p.err
}

package findfile

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// FormatInfo replaces placeholders in template with values from info:
// {} path, {base} name, {dir} parent, {ext} extension, {size} bytes,
// {time} last write (RFC 3339), {attrs} attribute names. A quoted form such
// as {"base"} inserts the Go-quoted value.
func FormatInfo(template string, info Info) string {
	values := []struct{ key, val string }{
		{"", info.Path},
		{"base", info.Name()},
		{"dir", info.ParentPath()},
		{"ext", info.Ext()},
		{"size", fmt.Sprintf("%d", info.Size)},
		{"time", info.LastWriteTime.Format(time.RFC3339)},
		{"attrs", info.Attributes.String()},
	}

	str := template
	for _, v := range values {
		str = strings.ReplaceAll(str, "{"+v.key+"}", v.val)
		str = strings.ReplaceAll(str, `{"`+v.key+`"}`, strconv.Quote(v.val))
	}
	return str
}

// FormatWatchResult is FormatInfo plus the {event} placeholder.
func FormatWatchResult(template string, r WatchResult) string {
	return FormatInfo(strings.ReplaceAll(template, "{event}", string(r.Event)), r.Info)
}

// RunCommand splits cmdStr on white space, runs it and copies its standard
// output to out. Standard error is folded into the returned error.
func RunCommand(ctx context.Context, cmdStr string, out io.Writer) error {
	args := strings.Fields(cmdStr)
	if len(args) == 0 {
		return fmt.Errorf("%w: empty command", ErrInvalidArgument)
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return fmt.Errorf("command error: %s: %w", strings.TrimSpace(stderr.String()), err)
		}
		return err
	}
	if stdout.Len() > 0 {
		_, err := out.Write(stdout.Bytes())
		return err
	}
	return nil
}

package goffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// FFProbeResult ffprobe result
type FFProbeResult struct {
	Format  FFProbeFormat          `json:"format"`
	Streams []FFProbeStream        `json:"streams"`
	Raw     map[string]interface{} `json:"raw"`
}

// FFProbeStream ffprobe stream result
type FFProbeStream struct {
	Index        uint              `json:"index"`
	CodecName    string            `json:"codec_name"`
	CodecType    string            `json:"codec_type"`
	Width        uint              `json:"width"`
	Height       uint              `json:"height"`
	PixFmt       string            `json:"pix_fmt"`
	RFrameRate   string            `json:"r_frame_rate"`
	AvgFrameRate string            `json:"avg_frame_rate"`
	TimeBase     string            `json:"time_base"`
	Duration     string            `json:"duration"`
	NbFrames     string            `json:"nb_frames"`
	NbReadFrames string            `json:"nb_read_frames"`
	Tags         map[string]string `json:"tags"`
}

// Frames number of frames, counted frames if probed with -count_frames
func (fps FFProbeStream) Frames() int {
	for _, s := range []string{fps.NbReadFrames, fps.NbFrames} {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return 0
}

// FFProbeFormat ffprobe format result
type FFProbeFormat struct {
	Filename       string            `json:"filename"`
	FormatName     string            `json:"format_name"`
	FormatLongName string            `json:"format_long_name"`
	Duration       string            `json:"duration"`
	Size           string            `json:"size"`
	BitRate        string            `json:"bit_rate"`
	ProbeScore     uint              `json:"probe_score"`
	Tags           map[string]string `json:"tags"`
}

// UnmarshalJSON unmarshal from ffprobe JSON output
func (fpr *FFProbeResult) UnmarshalJSON(text []byte) error {
	type probeInfo FFProbeResult
	var piDummy probeInfo
	err := json.Unmarshal(text, &piDummy)
	// unmarshal a second time in raw form
	_ = json.Unmarshal(text, &piDummy.Raw)
	*fpr = FFProbeResult(piDummy)
	return err
}

// FirstVideoStream find first video stream
func (fpr FFProbeResult) FirstVideoStream() (FFProbeStream, bool) {
	for _, s := range fpr.Streams {
		if s.CodecType == "video" {
			return s, true
		}
	}
	return FFProbeStream{}, false
}

// FormatName probed format (first value if comma separated)
func (fpr FFProbeResult) FormatName() string {
	return strings.Split(fpr.Format.FormatName, ",")[0]
}

// Duration probed duration
func (fpr FFProbeResult) Duration() time.Duration {
	v, _ := strconv.ParseFloat(fpr.Format.Duration, 64)
	return time.Duration(v * float64(time.Second))
}

func (fpr FFProbeResult) String() string {
	var codecs []string
	for _, s := range fpr.Streams {
		codecs = append(codecs, s.CodecName)
	}
	return fmt.Sprintf("%s:%s", fpr.FormatName(), strings.Join(codecs, ":"))
}

// FFProbeCmd is a ffprobe command
type FFProbeCmd struct {
	Flags []string
	Input Input
	// CountFrames decodes all frames to get an exact frame count
	CountFrames bool

	Context             context.Context
	StderrBufferNrLines int
	Stderr              io.Writer
	DebugLog            Printer
}

// Args returns ffprobe arguments
func (fp *FFProbeCmd) Args() []string {
	args := []string{
		"-hide_banner",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
	}
	if fp.CountFrames {
		args = append(args, "-count_frames")
	}
	args = append(args, fp.Flags...)
	args = append(args, sortedArgs(fp.Input.Options, optionArg(""))...)
	args = append(args, fp.Input.Flags...)
	if fp.Input.Format != "" {
		args = append(args, "-f", fp.Input.Format)
	}
	switch file := fp.Input.File.(type) {
	case io.Reader:
		args = append(args, "pipe:0")
	case string:
		args = append(args, file)
	}
	return args
}

// Result runs ffprobe and returns the parsed result
// Note that the error message might include command details that are sensitive
func (fp *FFProbeCmd) Result() (FFProbeResult, error) {
	ctx := fp.Context
	if ctx == nil {
		ctx = context.Background()
	}
	switch fp.Input.File.(type) {
	case io.Reader, string:
	default:
		return FFProbeResult{}, fmt.Errorf("unknown input file type %T should be string or io.Reader", fp.Input.File)
	}

	args := fp.Args()
	cmd := exec.CommandContext(ctx, FFprobePath, args...)
	if r, ok := fp.Input.File.(io.Reader); ok {
		cmd.Stdin = r
	}
	stdout := &bytes.Buffer{}
	cmd.Stdout = stdout

	nrLines := fp.StderrBufferNrLines
	if nrLines == 0 {
		nrLines = 100
	}
	stderrLastLines := NewLastLines(nrLines)
	cmd.Stderr = stderrLastLines
	if fp.Stderr != nil {
		cmd.Stderr = io.MultiWriter(stderrLastLines, fp.Stderr)
	}

	if fp.DebugLog != nil {
		fp.DebugLog.Printf("ffprobe %s", strings.Join(args, " "))
	}

	if err := cmd.Run(); err != nil {
		stderrLastLines.Close()
		return FFProbeResult{}, fmt.Errorf("%w: %s", err, stderrLastLines.String())
	}

	var pr FFProbeResult
	if err := json.Unmarshal(stdout.Bytes(), &pr); err != nil {
		return FFProbeResult{}, err
	}
	return pr, nil
}

// Probe reader r counting frames
func Probe(ctx context.Context, r io.Reader) (FFProbeResult, error) {
	fp := &FFProbeCmd{Context: ctx, Input: Input{File: r}, CountFrames: true}
	return fp.Result()
}

package goffmpeg

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// FFmpegCmd is a ffmpeg command
// ffmpeg
//   -filter_complex FilterGraph
//   Input
//     -i io.Reader/string
//   ...
//   Output
//     Map
//       -map [label]/*Input:Specifier
//     ...
//     io.Writer/string
//   ...
type FFmpegCmd struct {
	Flags       []string     `json:"flags"`
	Inputs      []*Input     `json:"inputs"`
	FilterGraph *FilterGraph `json:"filter_graph"`
	Outputs     []*Output    `json:"outputs"`

	Context             context.Context `json:"-"`
	StderrBufferNrLines int             `json:"-"`
	Stderr              io.Writer       `json:"-"`
	DebugLog            Printer         `json:"-"`

	cmd             *exec.Cmd
	stderrLastLines *LastLines
}

// Input file is a io.Reader (read from stdin) or a string
type Input struct {
	File    interface{}       `json:"file"`
	Format  string            `json:"format"`
	Options map[string]string `json:"options"`
	Flags   []string          `json:"flags"`
}

// Output file is a io.Writer (written to stdout) or a string
type Output struct {
	File    interface{}       `json:"file"`
	Maps    []*Map            `json:"maps"`
	Format  string            `json:"format"`
	Options map[string]string `json:"options"`
	Flags   []string          `json:"flags"`
}

// Map selects a filter graph output by Label or a stream from Input
type Map struct {
	Label     string            `json:"label"`
	Input     *Input            `json:"input"`
	Specifier string            `json:"specifier"`
	Codec     string            `json:"codec"`
	Options   map[string]string `json:"options"`
}

// FilterGraph is chains separated by ";"
type FilterGraph []FilterChain

// FilterChain is filters separated by ","
type FilterChain []Filter

type Filter struct {
	Name    string            `json:"name"`
	Inputs  []string          `json:"inputs"`
	Outputs []string          `json:"outputs"`
	Options map[string]string `json:"options"`
}

var filterValueEscapeRe = regexp.MustCompile(`[,:]`)

func padLabels(ls []string) string {
	var sb strings.Builder
	for _, l := range ls {
		sb.WriteString("[" + strings.ReplaceAll(l, `]`, `\]`) + "]")
	}
	return sb.String()
}

func (f Filter) String() string {
	s := padLabels(f.Inputs) + f.Name
	opts := sortedArgs(f.Options, func(k, v string) []string {
		return []string{k + "=" + filterValueEscapeRe.ReplaceAllString(v, `\$0`)}
	})
	if len(opts) > 0 {
		s += "=" + strings.Join(opts, ":")
	}
	return s + padLabels(f.Outputs)
}

func (fc FilterChain) String() string {
	var fs []string
	for _, f := range fc {
		fs = append(fs, f.String())
	}
	return strings.Join(fs, ",")
}

func (fg FilterGraph) String() string {
	var cs []string
	for _, c := range fg {
		cs = append(cs, c.String())
	}
	return strings.Join(cs, ";")
}

// Args returns ffmpeg arguments, readers are pipe:0 and writers pipe:1
func (fm *FFmpegCmd) Args() ([]string, error) {
	args, _, _, err := fm.buildArgs()
	return args, err
}

func (fm *FFmpegCmd) buildArgs() (args []string, stdin io.Reader, stdout io.Writer, err error) {
	args = []string{
		"-nostdin",
		"-hide_banner",
	}
	args = append(args, fm.Flags...)

	if fm.FilterGraph != nil && len(*fm.FilterGraph) > 0 {
		args = append(args, "-filter_complex", fm.FilterGraph.String())
	}

	inputToIndex := map[*Input]int{}
	for inputIndex, input := range fm.Inputs {
		inputToIndex[input] = inputIndex

		args = append(args, sortedArgs(input.Options, optionArg(""))...)
		args = append(args, input.Flags...)
		if input.Format != "" {
			args = append(args, "-f", input.Format)
		}
		args = append(args, "-i")
		switch file := input.File.(type) {
		case string:
			args = append(args, file)
		case io.Reader:
			if stdin != nil {
				return nil, nil, nil, ErrPipes
			}
			stdin = file
			args = append(args, "pipe:0")
		default:
			return nil, nil, nil, fmt.Errorf("unknown input file type %T should be string or io.Reader", file)
		}
	}

	for _, output := range fm.Outputs {
		for streamIndex, m := range output.Maps {
			var specifier string
			switch {
			case m.Label != "":
				specifier = "[" + m.Label + "]"
			case m.Input != nil:
				inputIndex, ok := inputToIndex[m.Input]
				if !ok {
					return nil, nil, nil, fmt.Errorf("can't find input %#v for map %#v", m.Input, m)
				}
				specifier = strconv.Itoa(inputIndex)
				if m.Specifier != "" {
					specifier += ":" + m.Specifier
				}
			default:
				specifier = m.Specifier
			}
			args = append(args, "-map", specifier)

			streamIndexStr := strconv.Itoa(streamIndex)
			if m.Codec != "" {
				args = append(args, "-codec:"+streamIndexStr, m.Codec)
			}
			args = append(args, sortedArgs(m.Options, optionArg(":"+streamIndexStr))...)
		}

		if output.Format != "" {
			args = append(args, "-f", output.Format)
		}
		args = append(args, sortedArgs(output.Options, optionArg(""))...)
		args = append(args, output.Flags...)

		switch file := output.File.(type) {
		case string:
			args = append(args, file)
		case io.Writer:
			if stdout != nil {
				return nil, nil, nil, ErrPipes
			}
			stdout = file
			args = append(args, "pipe:1")
		default:
			return nil, nil, nil, fmt.Errorf("unknown output file type %T should be string or io.Writer", file)
		}
	}

	return args, stdin, stdout, nil
}

func (fm *FFmpegCmd) debugLog() Printer {
	if fm.DebugLog != nil {
		return fm.DebugLog
	}
	return NopPrinter{}
}

// Start ffmpeg
func (fm *FFmpegCmd) Start() error {
	args, stdin, stdout, err := fm.buildArgs()
	if err != nil {
		return err
	}

	ctx := fm.Context
	if ctx == nil {
		ctx = context.Background()
	}
	fm.cmd = exec.CommandContext(ctx, FFmpegPath, args...)
	fm.cmd.Stdin = stdin
	fm.cmd.Stdout = stdout

	nrLines := fm.StderrBufferNrLines
	if nrLines == 0 {
		nrLines = 100
	}
	fm.stderrLastLines = NewLastLines(nrLines)
	fm.cmd.Stderr = fm.stderrLastLines
	if fm.Stderr != nil {
		fm.cmd.Stderr = io.MultiWriter(fm.stderrLastLines, fm.Stderr)
	}

	fm.debugLog().Printf("ffmpeg %s", strings.Join(args, " "))

	return fm.cmd.Start()
}

// Wait for cmd to finish
// Note that the error message might include command details that are sensitive
func (fm *FFmpegCmd) Wait() error {
	err := fm.cmd.Wait()
	fm.stderrLastLines.Close()
	if err != nil {
		return fmt.Errorf("%w: %s", err, fm.stderrLastLines.String())
	}
	return nil
}

// Run starts and waits for ffmpeg to finish
// Note that the error message might include command details that are sensitive
func (fm *FFmpegCmd) Run() error {
	if err := fm.Start(); err != nil {
		return err
	}
	return fm.Wait()
}

// StderrBuffer returns the last stderr lines as a string
// Note that the stderr might include command details that are sensitive
func (fm *FFmpegCmd) StderrBuffer() string {
	if fm.stderrLastLines == nil {
		return ""
	}
	return fm.stderrLastLines.String()
}

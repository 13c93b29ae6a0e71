package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/helmdraw/pkg/errors"
	pkgio "github.com/matzehuels/helmdraw/pkg/io"
	"github.com/matzehuels/helmdraw/pkg/pipeline"
	"github.com/matzehuels/helmdraw/pkg/translate"
)

// stdin is read for the "-" input.
var stdin io.Reader = os.Stdin

// input is notation read from one command argument.
type input struct {
	text string
	// path is the file the notation came from; empty for literal notation
	// and stdin.
	path string
}

// readInput resolves a command argument: "-" reads stdin, an existing file
// is read (a .json file as an exported graph), and anything that looks
// like notation is used as is.
func readInput(arg string) (input, error) {
	if arg == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return input{}, fmt.Errorf("read stdin: %w", err)
		}
		return input{text: strings.TrimSpace(string(data))}, nil
	}
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		if strings.EqualFold(filepath.Ext(arg), ".json") {
			return readGraphJSON(arg)
		}
		data, err := os.ReadFile(arg)
		if err != nil {
			return input{}, err
		}
		return input{text: strings.TrimSpace(string(data)), path: arg}, nil
	}
	if looksLikeNotation(arg) {
		return input{text: arg}, nil
	}
	return input{}, errors.New(errors.ErrCodeInvalidInput, "%s: no such file, and not notation", arg)
}

// readGraphJSON loads a graph written by "helmdraw parse" and turns it
// back into notation.
func readGraphJSON(path string) (input, error) {
	m, err := pkgio.ImportJSON(path)
	if err != nil {
		return input{}, err
	}
	return input{text: translate.Serialize(m), path: path}, nil
}

// looksLikeNotation reports whether arg holds at least one polymer block.
func looksLikeNotation(arg string) bool {
	return strings.Contains(arg, "{") && strings.Contains(arg, "}")
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns stdout for an empty path or "-", or creates the file.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

// writeOutput writes data to path, or to stdout for an empty path.
func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// basePath derives the output path without extension. An explicit output
// loses a known format extension; otherwise the input file name is used,
// or "structure" for notation given on the command line.
func basePath(output string, in input) string {
	if output != "" {
		ext := filepath.Ext(output)
		if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
			return strings.TrimSuffix(output, ext)
		}
		return output
	}
	if in.path == "" {
		return "structure"
	}
	return strings.TrimSuffix(in.path, filepath.Ext(in.path))
}

// batchPath places the outputs of one of several inputs under dir. The
// name comes from the input file, or its index for literal notation, and
// must stay inside dir.
func batchPath(dir string, in input, index int) (string, error) {
	name := fmt.Sprintf("structure%d", index+1)
	if in.path != "" {
		name = strings.TrimSuffix(filepath.Base(in.path), filepath.Ext(in.path))
	}
	if err := errors.ValidatePath(name); err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

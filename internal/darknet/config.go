package darknet

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Block is one [section] of a Darknet config file: a type tag plus the
// raw key/value pairs, both kept as strings. The first block of a config
// is network-wide metadata; every later block describes one layer.
type Block struct {
	Index  int // position in the config file, 0 = net metadata
	Type   string
	Params map[string]string
}

// Has reports whether the block declares the key, regardless of value.
func (b *Block) Has(key string) bool {
	_, ok := b.Params[key]
	return ok
}

// Str returns the raw string value of a required key.
func (b *Block) Str(key string) (string, error) {
	v, ok := b.Params[key]
	if !ok {
		return "", configErrf(b.Index, key, "required key is missing")
	}
	return v, nil
}

// Int returns the value of a required integer key.
func (b *Block) Int(key string) (int, error) {
	v, err := b.Str(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, configErrf(b.Index, key, "value %q is not an integer", v)
	}
	return n, nil
}

// Ints returns the value of a required key holding a comma-separated
// integer list, e.g. route sources or a yolo mask.
func (b *Block) Ints(key string) ([]int, error) {
	v, err := b.Str(key)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(v, ",")
	values := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, configErrf(b.Index, key, "element %q is not an integer", part)
		}
		values[i] = n
	}
	return values, nil
}

// Floats returns the value of a required key holding a comma-separated
// float list, e.g. the yolo anchor sizes.
func (b *Block) Floats(key string) ([]float32, error) {
	v, err := b.Str(key)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(v, ",")
	values := make([]float32, len(parts))
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return nil, configErrf(b.Index, key, "element %q is not a number", part)
		}
		values[i] = float32(f)
	}
	return values, nil
}

// ParseConfig reads a Darknet config into its ordered block sequence.
//
// The format is line-oriented: `[name]` opens a new block, `key=value`
// lines belong to the current block, `#` starts a full-line comment and
// blank lines are ignored. The final in-progress block is flushed at end
// of input even without a trailing blank line.
func ParseConfig(r io.Reader) ([]Block, error) {
	scanner := bufio.NewScanner(r)

	var blocks []Block
	var current *Block
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return nil, &ConfigError{
					Block: -1,
					Msg:   fmt.Sprintf("line %d: unterminated section header %q", lineNo, line),
				}
			}
			if current != nil {
				blocks = append(blocks, *current)
			}
			current = &Block{
				Index:  len(blocks),
				Type:   strings.TrimSpace(line[1 : len(line)-1]),
				Params: make(map[string]string),
			}
			continue
		}

		if current == nil {
			return nil, &ConfigError{
				Block: -1,
				Msg:   fmt.Sprintf("line %d: %q appears before any [section] header", lineNo, line),
			}
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok || strings.Contains(value, "=") {
			return nil, configErrf(current.Index, "", "line %d: %q is not a key=value pair", lineNo, line)
		}
		current.Params[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if current != nil {
		blocks = append(blocks, *current)
	}
	return blocks, nil
}

// ParseConfigFile reads and parses a Darknet config file.
func ParseConfigFile(path string) ([]Block, error) {
	//nolint:gosec // G304: opening a caller-supplied config path is the purpose here
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	return ParseConfig(file)
}

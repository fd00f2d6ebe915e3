// Package loader reads export lists into the availability database.
//
// An export list has one export per line:
//
//	["<os>\<dll path>"]<TAB><ordinal or empty><TAB><name or empty>
//
// The first field is a JSON array holding exactly one path. After
// lower-casing and turning '/' into '\', the first path component is the
// operating system short name and the rest is the DLL path.
package loader

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/winapi-history/winapidb/internal/database"
	"github.com/winapi-history/winapidb/internal/services"
)

// ErrMalformedLine is wrapped by every parse failure.
var ErrMalformedLine = errors.New("malformed export line")

// ParseLine decodes one non-blank line of an export list.
func ParseLine(line string) (services.Observation, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 3 {
		return services.Observation{}, fmt.Errorf("%w: expected 3 tab-separated fields, got %d", ErrMalformedLine, len(fields))
	}

	var paths []string
	if err := json.Unmarshal([]byte(fields[0]), &paths); err != nil {
		return services.Observation{}, fmt.Errorf("%w: path field: %w", ErrMalformedLine, err)
	}
	if len(paths) != 1 {
		return services.Observation{}, fmt.Errorf("%w: expected a single path, got %d", ErrMalformedLine, len(paths))
	}

	normalized := strings.ReplaceAll(strings.ToLower(paths[0]), "/", `\`)
	pieces := strings.Split(normalized, `\`)
	if len(pieces) < 2 {
		return services.Observation{}, fmt.Errorf("%w: path %q has no operating system component", ErrMalformedLine, paths[0])
	}

	obs := services.Observation{
		OSShortName: pieces[0],
		DllPath:     strings.Join(pieces[1:], `\`),
		DllFileName: pieces[len(pieces)-1],
	}

	if fields[1] != "" {
		ordinal, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil || ordinal < 0 {
			return services.Observation{}, fmt.Errorf("%w: invalid ordinal %q", ErrMalformedLine, fields[1])
		}
		obs.Ordinal = &ordinal
	}
	if fields[2] != "" {
		name := fields[2]
		obs.RawName = &name
	}

	if obs.RawName == nil && obs.Ordinal == nil {
		return services.Observation{}, fmt.Errorf("%w: %s in %q", ErrMalformedLine, services.ErrEmptyObservation, paths[0])
	}
	return obs, nil
}

// Loader ingests export lists in one transaction per list.
type Loader struct {
	ingest *services.IngestService
	logger *slog.Logger
}

func New(dbCtx *database.Context) *Loader {
	return &Loader{
		ingest: services.NewIngestService(dbCtx),
		logger: dbCtx.Logger(),
	}
}

// LoadFile ingests the export list at path.
func (l *Loader) LoadFile(ctx context.Context, path string) (services.IngestSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return services.IngestSummary{}, fmt.Errorf("failed to open export list: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return services.IngestSummary{}, fmt.Errorf("failed to stat export list: %w", err)
	}

	l.logger.Info("loading export list", "path", path, "bytes", info.Size())
	return l.Load(ctx, f, info.Size())
}

// Load ingests an export list of size bytes read from r. Progress is logged
// in per-mille of bytes read when size is positive. Any error rolls the
// whole list back.
func (l *Loader) Load(ctx context.Context, r io.Reader, size int64) (summary services.IngestSummary, err error) {
	batch, err := l.ingest.Begin(ctx)
	if err != nil {
		return services.IngestSummary{}, err
	}
	defer func() {
		if err != nil {
			_ = batch.Rollback()
		}
	}()

	reader := bufio.NewReader(r)
	var (
		lineNo    int
		bytesRead int64
		lastMille int64
	)
	for {
		line, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return services.IngestSummary{}, fmt.Errorf("failed to read export list: %w", readErr)
		}
		if line == "" && readErr != nil {
			break
		}

		lineNo++
		bytesRead += int64(len(line))
		if size > 0 {
			if mille := bytesRead * 1000 / size; mille > lastMille {
				lastMille = mille
				l.logger.Debug("load progress", "permille", mille)
			}
		}

		if err := ctx.Err(); err != nil {
			return services.IngestSummary{}, err
		}

		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			obs, err := ParseLine(line)
			if err != nil {
				return services.IngestSummary{}, fmt.Errorf("line %d: %w", lineNo, err)
			}
			if err := batch.Add(ctx, obs); err != nil {
				return services.IngestSummary{}, fmt.Errorf("line %d: %w", lineNo, err)
			}
		}

		if readErr != nil {
			break
		}
	}

	return batch.Commit()
}

package downloader

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Kind tells which streams a format carries.
type Kind int

const (
	Combined Kind = iota
	VideoOnly
	AudioOnly
)

func (k Kind) String() string {
	switch k {
	case VideoOnly:
		return "video only"
	case AudioOnly:
		return "audio only"
	}
	return "video+audio"
}

// Format is one line of `yt-dlp --list-formats`.
type Format struct {
	ID         string
	Ext        string
	Resolution string // "1920x1080" or "unknown"
	Height     int
	FPS        int
	SizeMiB    float64
	Bitrate    int // kbit/s
	VCodec     string
	ACodec     string
	Kind       Kind
	Line       string
}

var (
	reFormatID   = regexp.MustCompile(`^(\S+)`)
	reExt        = regexp.MustCompile(`\s+(\w+)\s+`)
	reResolution = regexp.MustCompile(`(\d+)x(\d+)`)
	reFPS        = regexp.MustCompile(`(\d+)\s+fps`)
	reFPSColumn  = regexp.MustCompile(`\d+x\d+\s+(\d+)\s`)
	reSize       = regexp.MustCompile(`(\d+(?:\.\d+)?)(Ki|Mi|Gi)B`)
	reABR        = regexp.MustCompile(`(\d+)k\s+(\d+)k`)
	reBitrate    = regexp.MustCompile(`(\d+)k\s`)
	reVCodec     = regexp.MustCompile(`(avc1\.\w+|vp09\.[\d.]+|vp9|av01\.[\w.]+|vp\d+\.\d+\.\d+\.\d+)`)
	reACodec     = regexp.MustCompile(`(mp4a\.\d+\.\d+|opus|vorbis|mp3)`)
)

// ParseFormats reads the format table printed by yt-dlp. Header, separator
// and log lines are skipped.
func ParseFormats(output string) []Format {
	var formats []Format
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		if trimmed == "" || strings.Contains(lower, "format code") || strings.Contains(line, "---") || strings.HasPrefix(trimmed, "─") ||
			strings.HasPrefix(trimmed, "[") || strings.HasPrefix(lower, "id ") || strings.HasPrefix(lower, "warning") {
			continue
		}
		m := reFormatID.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		f := Format{ID: m[1], Ext: "unknown", Resolution: "unknown", FPS: 30, VCodec: "unknown", ACodec: "unknown", Line: line}
		if m := reExt.FindStringSubmatch(line); m != nil {
			f.Ext = m[1]
		}
		if m := reResolution.FindStringSubmatch(line); m != nil {
			f.Resolution = m[0]
			f.Height, _ = strconv.Atoi(m[2])
		}
		if m := reFPS.FindStringSubmatch(line); m != nil {
			f.FPS, _ = strconv.Atoi(m[1])
		} else if m := reFPSColumn.FindStringSubmatch(line); m != nil {
			f.FPS, _ = strconv.Atoi(m[1])
		}
		if m := reSize.FindStringSubmatch(line); m != nil {
			v, _ := strconv.ParseFloat(m[1], 64)
			switch m[2] {
			case "Ki":
				v /= 1024
			case "Gi":
				v *= 1024
			}
			f.SizeMiB = v
		}
		if m := reABR.FindStringSubmatch(line); m != nil {
			f.Bitrate, _ = strconv.Atoi(m[1])
		} else if m := reBitrate.FindStringSubmatch(line); m != nil {
			f.Bitrate, _ = strconv.Atoi(m[1])
		}
		if m := reVCodec.FindStringSubmatch(line); m != nil {
			f.VCodec = m[1]
		}
		if m := reACodec.FindStringSubmatch(line); m != nil {
			f.ACodec = m[1]
		}
		switch {
		case strings.Contains(line, "video only"):
			f.Kind = VideoOnly
		case strings.Contains(line, "audio only"):
			f.Kind = AudioOnly
		}
		formats = append(formats, f)
	}
	return formats
}

// Media is what the user wants to end up with.
type Media string

const (
	Video Media = "video"
	Audio Media = "audio"
)

// ParseMedia accepts "video" or "audio".
func ParseMedia(s string) (Media, error) {
	switch m := Media(strings.ToLower(s)); m {
	case Video, Audio:
		return m, nil
	}
	return "", fmt.Errorf("unknown media type %q", s)
}

// Choice is a selectable codec and the format id behind it.
type Choice struct {
	Codec    string
	FormatID string
	Format   Format
}

// Quality groups the codecs of one resolution ("1080p60") or bitrate
// ("128k").
type Quality struct {
	Key     string
	rank    int
	Choices []Choice
}

// Container groups the qualities of one file extension.
type Container struct {
	Ext       string
	Qualities []Quality
}

// Options is the dropdown tree: media → container → quality → codec.
type Options struct {
	Video []Container
	Audio []Container
}

// Containers of a media type.
func (o Options) Containers(m Media) []Container {
	if m == Audio {
		return o.Audio
	}
	return o.Video
}

// Lookup resolves a full selection to a format id.
func (o Options) Lookup(m Media, ext, quality, codec string) (string, bool) {
	for _, c := range o.Containers(m) {
		if c.Ext != ext {
			continue
		}
		for _, q := range c.Qualities {
			if q.Key != quality {
				continue
			}
			for _, ch := range q.Choices {
				if ch.Codec == codec {
					return ch.FormatID, true
				}
			}
		}
	}
	return "", false
}

// BuildOptions groups video-only formats by extension, resolution (with
// the frame rate when above 30) and video codec, and audio-only formats by
// extension, bitrate and audio codec. Formats with an unknown codec are
// left out, as are containers without any known codec. The first format of
// each group wins. Qualities are sorted best first.
func BuildOptions(formats []Format) Options {
	return Options{
		Video: group(formats, VideoOnly, func(f Format) (string, int, string) {
			key := fmt.Sprintf("%dp", f.Height)
			if f.FPS > 30 {
				key = fmt.Sprintf("%dp%d", f.Height, f.FPS)
			}
			return key, f.Height, f.VCodec
		}),
		Audio: group(formats, AudioOnly, func(f Format) (string, int, string) {
			return fmt.Sprintf("%dk", f.Bitrate), f.Bitrate, f.ACodec
		}),
	}
}

func group(formats []Format, kind Kind, keyOf func(Format) (string, int, string)) []Container {
	byExt := map[string]map[string]*Quality{}
	for _, f := range formats {
		if f.Kind != kind {
			continue
		}
		key, rank, codec := keyOf(f)
		if codec == "unknown" {
			continue
		}
		qs, ok := byExt[f.Ext]
		if !ok {
			qs = map[string]*Quality{}
			byExt[f.Ext] = qs
		}
		q, ok := qs[key]
		if !ok {
			q = &Quality{Key: key, rank: rank}
			qs[key] = q
		}
		dup := false
		for _, ch := range q.Choices {
			dup = dup || ch.Codec == codec
		}
		if !dup {
			q.Choices = append(q.Choices, Choice{Codec: codec, FormatID: f.ID, Format: f})
		}
	}
	containers := make([]Container, 0, len(byExt))
	for ext, qs := range byExt {
		c := Container{Ext: ext}
		for _, q := range qs {
			sort.Slice(q.Choices, func(i, j int) bool { return q.Choices[i].Codec < q.Choices[j].Codec })
			c.Qualities = append(c.Qualities, *q)
		}
		sort.Slice(c.Qualities, func(i, j int) bool {
			if c.Qualities[i].rank != c.Qualities[j].rank {
				return c.Qualities[i].rank > c.Qualities[j].rank
			}
			return c.Qualities[i].Key > c.Qualities[j].Key
		})
		containers = append(containers, c)
	}
	sort.Slice(containers, func(i, j int) bool { return containers[i].Ext < containers[j].Ext })
	return containers
}

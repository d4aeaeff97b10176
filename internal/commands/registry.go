package commands

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/coltonbatts/davincimcp/internal/errortypes"
	"github.com/coltonbatts/davincimcp/internal/resolve"
)

// Parameter extraction patterns.
var (
	durationPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:s|sec|second)`)
	namePattern     = regexp.MustCompile(`(?:named|called|name)\s+['"]?([a-zA-Z0-9 ]+)['"]?`)
	timecodePattern = regexp.MustCompile(`(\d{2}:\d{2}:\d{2}:\d{2})`)
	framePattern    = regexp.MustCompile(`(-?\d+)\s*frames?`)
	speedPattern    = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*x?`)
)

// vocabEntry maps a phrase found in input text to a canonical value. The
// tables below are ordered slices on purpose: the first matching entry wins,
// so lookup is deterministic.
type vocabEntry struct {
	phrase    string
	canonical string
}

var transitionTypes = []vocabEntry{
	{"cross dissolve", "Cross Dissolve"},
	{"fade", "Fade"},
	{"wipe", "Wipe"},
	{"push", "Push"},
	{"slide", "Slide"},
}

var markerColors = []string{
	"blue", "green", "red", "yellow", "purple", "cyan", "magenta", "white", "black",
}

// Match is the outcome of intent matching: the catalog key plus the
// parameters extracted from the text.
type Match struct {
	CommandID string
	Params    Params
}

type registration struct {
	command  Command
	triggers []string
}

// Registry owns the command catalog and its trigger vocabulary.
//
// Matching iterates commands in registration order and each command's
// triggers in declaration order; the first trigger found as a substring of
// the input wins. A short, early trigger can therefore shadow a more
// specific later one. The ordering is the documented tie-break, so commands
// with overlapping vocabularies must be registered most-specific first.
type Registry struct {
	entries []registration
	byID    map[string]int
	logger  *slog.Logger
}

// NewRegistry creates a registry pre-populated with the built-in editing
// and transport commands bound to the given controller.
func NewRegistry(controller resolve.Controller, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		byID:   make(map[string]int),
		logger: logger,
	}
	r.registerBuiltins(controller)
	return r
}

func (r *Registry) registerBuiltins(controller resolve.Controller) {
	must := func(err error) {
		if err != nil {
			panic(err) // built-in registrations are statically valid
		}
	}

	must(r.Register(NewCutCommand(controller, r.logger),
		"cut", "split", "slice", "divide",
		"separate clip", "split clip", "cut clip"))

	must(r.Register(NewAddTransitionCommand(controller, r.logger),
		"add transition", "transition", "dissolve",
		"cross dissolve", "fade", "wipe"))

	must(r.Register(NewSetMarkerCommand(controller, r.logger),
		"add marker", "set marker", "create marker", "marker", "mark position"))

	// Toggle before play/stop so "toggle playback" does not fall through
	// to their shorter triggers.
	must(r.Register(NewPlaybackToggleCommand(controller, r.logger),
		"toggle playback", "toggle play"))

	must(r.Register(NewPlaybackStartCommand(controller, r.logger),
		"start playback", "play", "resume"))

	must(r.Register(NewPlaybackStopCommand(controller, r.logger),
		"stop playback", "stop", "pause"))

	must(r.Register(NewJumpCommand(controller, r.logger),
		"go to", "jump to", "jump"))

	must(r.Register(NewPlaybackSpeedCommand(controller, r.logger),
		"playback speed", "speed"))
}

// Register adds a command with its trigger phrases. Registering an existing
// identifier replaces the command in place, keeping its original position in
// the match order.
func (r *Registry) Register(cmd Command, triggers ...string) error {
	if cmd == nil || cmd.ID() == "" {
		return errortypes.ValidationError(nil, "command must have a non-empty identifier")
	}
	if len(triggers) == 0 {
		return errortypes.ValidationError(nil, "command must have at least one trigger phrase").
			WithField("command_id", cmd.ID())
	}

	entry := registration{command: cmd, triggers: triggers}
	if idx, ok := r.byID[cmd.ID()]; ok {
		r.entries[idx] = entry
		return nil
	}
	r.byID[cmd.ID()] = len(r.entries)
	r.entries = append(r.entries, entry)
	return nil
}

// Get returns the command registered under the given identifier.
func (r *Registry) Get(commandID string) (Command, bool) {
	idx, ok := r.byID[commandID]
	if !ok {
		return nil, false
	}
	return r.entries[idx].command, true
}

// Commands returns the catalog in registration order.
func (r *Registry) Commands() []Command {
	out := make([]Command, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.command
	}
	return out
}

// MatchIntent matches natural-language text against the trigger vocabulary
// and extracts command parameters. Empty or whitespace-only input never
// matches.
func (r *Registry) MatchIntent(text string) (Match, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return Match{}, false
	}

	for _, entry := range r.entries {
		for _, trigger := range entry.triggers {
			if strings.Contains(text, trigger) {
				id := entry.command.ID()
				r.logger.Debug("Matched intent", "command_id", id, "trigger", trigger)
				return Match{
					CommandID: id,
					Params:    r.extractParams(id, text),
				}, true
			}
		}
	}
	return Match{}, false
}

// extractParams pulls command-specific parameters out of normalized text.
// Extraction is regex and fixed-vocabulary based; unextracted fields are
// left zero for the command to default.
func (r *Registry) extractParams(commandID, text string) Params {
	switch commandID {
	case CommandIDTransition:
		var p TransitionParams
		for _, entry := range transitionTypes {
			if strings.Contains(text, entry.phrase) {
				p.Type = entry.canonical
				break
			}
		}
		if m := durationPattern.FindStringSubmatch(text); m != nil {
			p.Duration = parseFloat(m[1])
		}
		return p

	case CommandIDMarker:
		var p MarkerParams
		if m := namePattern.FindStringSubmatch(text); m != nil {
			p.Name = strings.TrimSpace(m[1])
		}
		for _, color := range markerColors {
			if strings.Contains(text, color) {
				p.Color = strings.ToUpper(color[:1]) + color[1:]
				break
			}
		}
		return p

	case CommandIDJump:
		var p JumpParams
		if m := timecodePattern.FindStringSubmatch(text); m != nil {
			p.Timecode = m[1]
		} else if m := framePattern.FindStringSubmatch(text); m != nil {
			p.FrameOffset = parseInt(m[1])
		}
		return p

	case CommandIDSpeed:
		var p SpeedParams
		if m := speedPattern.FindStringSubmatch(text); m != nil {
			p.Speed = parseFloat(m[1])
		}
		return p
	}

	return EmptyParams{}
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

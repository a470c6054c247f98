// Package scenariofile parses the operator-authored scenario TOML document
// into the scenario domain model.
package scenariofile

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/Strob0t/scenariogen/internal/domain/scenario"
)

// ErrSyntax indicates the document is not well-formed TOML or does not match
// the expected shape.
var ErrSyntax = errors.New("scenario syntax error")

type document struct {
	GreenAgent   *agentBlock    `toml:"green_agent"`
	Participants []agentBlock   `toml:"participants"`
	Config       map[string]any `toml:"config"`
}

type agentBlock struct {
	Name         string         `toml:"name"`
	Image        string         `toml:"image"`
	AgentbeatsID string         `toml:"agentbeats_id"`
	AgentName    string         `toml:"agent_name"`
	Env          map[string]any `toml:"env"`
}

// Load reads and parses the scenario file at path.
func Load(path string) (*scenario.Scenario, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is operator supplied
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a scenario document. Identity errors are reported as
// *scenario.ConfigError; malformed TOML wraps ErrSyntax.
func Parse(data []byte) (*scenario.Scenario, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}

	green := agentBlock{}
	if doc.GreenAgent != nil {
		green = *doc.GreenAgent
	}
	green.Name = scenario.CoordinatorName

	coordinator, err := toAgent(green, scenario.RoleCoordinator)
	if err != nil {
		return nil, err
	}

	s := &scenario.Scenario{
		Coordinator:  coordinator,
		Participants: make([]scenario.Agent, 0, len(doc.Participants)),
		Config:       doc.Config,
	}
	// Names are checked before participant identities so that duplicates are
	// reported ahead of per-agent field errors.
	named := make([]scenario.Agent, 0, len(doc.Participants))
	for i, block := range doc.Participants {
		if block.Name == "" {
			return nil, &scenario.ConfigError{
				Agent:  fmt.Sprintf("participant #%d", i+1),
				Field:  "name",
				Reason: "must have a name",
			}
		}
		named = append(named, scenario.Agent{Name: block.Name})
	}
	if err := scenario.CheckUniqueNames(named); err != nil {
		return nil, err
	}

	for _, block := range doc.Participants {
		p, err := toAgent(block, scenario.RoleParticipant)
		if err != nil {
			return nil, err
		}
		s.Participants = append(s.Participants, p)
	}
	return s, nil
}

func toAgent(b agentBlock, role scenario.Role) (scenario.Agent, error) {
	a := scenario.Agent{
		Name:  b.Name,
		Role:  role,
		Alias: b.AgentName,
	}

	env, err := stringEnv(a.Label(), b.Env)
	if err != nil {
		return scenario.Agent{}, err
	}
	a.Env = env

	a.Identity, err = scenario.NewIdentity(a.Label(), b.Image, b.AgentbeatsID)
	if err != nil {
		return scenario.Agent{}, err
	}
	return a, nil
}

// stringEnv converts TOML scalar values to the string form containers
// receive: booleans as True/False, floats always with a fractional part or an
// exponent, datetimes with a space between date and time.
func stringEnv(label string, raw map[string]any) (map[string]string, error) {
	env := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			env[k] = val
		case int64:
			env[k] = strconv.FormatInt(val, 10)
		case float64:
			env[k] = floatString(val)
		case bool:
			env[k] = "False"
			if val {
				env[k] = "True"
			}
		case time.Time:
			env[k] = datetimeString(val)
		case toml.LocalDate:
			env[k] = val.String()
		case toml.LocalTime:
			env[k] = localTimeString(val)
		case toml.LocalDateTime:
			env[k] = val.LocalDate.String() + " " + localTimeString(val.LocalTime)
		default:
			return nil, &scenario.ConfigError{
				Agent:  label,
				Field:  "env",
				Reason: fmt.Sprintf("env '%s' must be a string or scalar value", k),
			}
		}
	}
	return env, nil
}

func floatString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if a := math.Abs(f); a != 0 && (a < 1e-4 || a >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func datetimeString(t time.Time) string {
	layout := "2006-01-02 15:04:05"
	if t.Nanosecond()/1000 != 0 {
		layout += ".000000"
	}
	return t.Format(layout + "-07:00")
}

func localTimeString(t toml.LocalTime) string {
	s := fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	if us := t.Nanosecond / 1000; us != 0 {
		s += fmt.Sprintf(".%06d", us)
	}
	return s
}

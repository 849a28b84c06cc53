package catalog

import (
	"strings"

	"github.com/matzehuels/archview/pkg/errors"
)

// AllJourneyID is the id of the synthesized journey that consolidates every
// stored journey. It is never stored on disk.
const AllJourneyID = "all"

// JourneyFileSuffix is the filename suffix of journey documents.
const JourneyFileSuffix = ".journey.json"

// =============================================================================
// Environments and Health
// =============================================================================

// Env is a deployment environment.
type Env string

// Supported environments.
const (
	EnvDev   Env = "dev"
	EnvStage Env = "stage"
	EnvProd  Env = "prod"
)

// Envs lists every environment in display order.
var Envs = []Env{EnvDev, EnvStage, EnvProd}

// DefaultEnv is the environment shown when none is selected.
const DefaultEnv = EnvProd

// ParseEnv converts s into an Env. The empty string yields DefaultEnv.
func ParseEnv(s string) (Env, error) {
	if s == "" {
		return DefaultEnv, nil
	}
	for _, e := range Envs {
		if string(e) == strings.ToLower(s) {
			return e, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidEnv, "unknown environment %q (must be dev, stage or prod)", s)
}

// Health is the health state of a system or connection in one environment.
type Health string

// Health states. HealthUnknown doubles as "no status recorded".
const (
	HealthHealthy  Health = "healthy"
	HealthDegraded Health = "degraded"
	HealthDown     Health = "down"
	HealthUnknown  Health = "unknown"
)

// Status maps an environment to its health.
type Status map[Env]Health

// Get returns the health recorded for env, or HealthUnknown when absent.
func (s Status) Get(env Env) Health {
	if h, ok := s[env]; ok && h != "" {
		return h
	}
	return HealthUnknown
}

// =============================================================================
// Shared value types
// =============================================================================

// Owner is a person or team responsible for an entity.
type Owner struct {
	Name  string `json:"name" bson:"name"`
	Email string `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	Slack string `json:"slack,omitempty" bson:"slack,omitempty"`
}

// Key returns the identity used to deduplicate owners.
func (o Owner) Key() string {
	return o.Name + "|" + o.Email + "|" + o.Slack
}

// Doc is a documentation link.
type Doc struct {
	Title string `json:"title" bson:"title"`
	URL   string `json:"url" bson:"url" validate:"required,url"`
}

// Key returns the identity used to deduplicate docs.
func (d Doc) Key() string {
	return d.Title + "|" + d.URL
}

// =============================================================================
// Entities
// =============================================================================

// System is a cataloged service. Only the id must be non-empty; an empty
// name falls back to the id for display.
type System struct {
	ID          string   `json:"id" bson:"_id" validate:"required"`
	Name        string   `json:"name" bson:"name"`
	Domain      string   `json:"domain,omitempty" bson:"domain,omitempty"`
	IP          string   `json:"ip,omitempty" bson:"ip,omitempty"`
	Description string   `json:"description,omitempty" bson:"description,omitempty"`
	Tags        []string `json:"tags,omitempty" bson:"tags,omitempty"`
	Owners      []Owner  `json:"owners,omitempty" bson:"owners,omitempty" validate:"omitempty,dive"`
	Docs        []Doc    `json:"docs,omitempty" bson:"docs,omitempty" validate:"omitempty,dive"`
	Status      Status   `json:"status,omitempty" bson:"status,omitempty" validate:"omitempty,dive,keys,oneof=dev stage prod,endkeys,oneof=healthy degraded down unknown"`

	// X and Y are optional layout hints honoured by the grid layout.
	X *float64 `json:"x,omitempty" bson:"x,omitempty"`
	Y *float64 `json:"y,omitempty" bson:"y,omitempty"`
}

// DisplayName returns the name if set, otherwise the ID.
func (s System) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}

// Connection is a directed integration between two systems. From and To
// reference system ids but are not required to resolve.
type Connection struct {
	ID              string   `json:"id" bson:"_id" validate:"required"`
	From            string   `json:"from" bson:"from"`
	To              string   `json:"to" bson:"to"`
	Label           string   `json:"label,omitempty" bson:"label,omitempty"`
	Protocol        string   `json:"protocol,omitempty" bson:"protocol,omitempty"`
	Endpoint        string   `json:"endpoint,omitempty" bson:"endpoint,omitempty"`
	Port            *int     `json:"port,omitempty" bson:"port,omitempty"`
	CredentialAlias string   `json:"credentialAlias,omitempty" bson:"credentialAlias,omitempty"`
	Description     string   `json:"description,omitempty" bson:"description,omitempty"`
	Tags            []string `json:"tags,omitempty" bson:"tags,omitempty"`
	Owners          []Owner  `json:"owners,omitempty" bson:"owners,omitempty" validate:"omitempty,dive"`
	Docs            []Doc    `json:"docs,omitempty" bson:"docs,omitempty" validate:"omitempty,dive"`
	Status          Status   `json:"status,omitempty" bson:"status,omitempty" validate:"omitempty,dive,keys,oneof=dev stage prod,endkeys,oneof=healthy degraded down unknown"`
}

// HasAnyTag reports whether c carries at least one of the given tags.
func (c Connection) HasAnyTag(tags map[string]bool) bool {
	for _, t := range c.Tags {
		if tags[t] {
			return true
		}
	}
	return false
}

// Journey is a named, curated subset of connections. Systems lists extra
// system ids that are not reachable through the connections.
type Journey struct {
	ID          string   `json:"id" bson:"id" validate:"required"`
	Name        string   `json:"name" bson:"name"`
	Label       string   `json:"label,omitempty" bson:"label,omitempty"`
	Description string   `json:"description,omitempty" bson:"description,omitempty"`
	Connections []string `json:"connections" bson:"connections" validate:"required"`
	Systems     []string `json:"systems,omitempty" bson:"systems,omitempty"`
	Owners      []Owner  `json:"owners,omitempty" bson:"owners,omitempty" validate:"omitempty,dive"`
	Docs        []Doc    `json:"docs,omitempty" bson:"docs,omitempty" validate:"omitempty,dive"`
	Tags        []string `json:"tags,omitempty" bson:"tags,omitempty"`
}

// DisplayName returns the label if set, otherwise the name.
func (j Journey) DisplayName() string {
	if j.Label != "" {
		return j.Label
	}
	return j.Name
}

// JourneyEntry is a loaded journey together with its path relative to the
// journeys directory (for example "commerce/checkout/guest.journey.json").
type JourneyEntry struct {
	Journey Journey `json:"journey"`
	Path    string  `json:"path"`
}

// JourneyListItem is the summary of a journey returned by list endpoints.
type JourneyListItem struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Label string   `json:"label,omitempty"`
	Path  string   `json:"path"`
	Tags  []string `json:"tags,omitempty"`
}

// DisplayName returns the label if set, otherwise the name.
func (i JourneyListItem) DisplayName() string {
	if i.Label != "" {
		return i.Label
	}
	return i.Name
}

// ListItem summarises the entry. The path is reported relative to the data
// root, so it carries the "journeys/" prefix.
func (e JourneyEntry) ListItem() JourneyListItem {
	return JourneyListItem{
		ID:    e.Journey.ID,
		Name:  e.Journey.Name,
		Label: e.Journey.Label,
		Path:  "journeys/" + e.Path,
		Tags:  e.Journey.Tags,
	}
}

// PathKey returns the entry path without the journey file suffix, which is
// the form accepted by journey lookups.
func (e JourneyEntry) PathKey() string {
	return strings.TrimSuffix(e.Path, JourneyFileSuffix)
}

// =============================================================================
// Collections
// =============================================================================

// SystemsDocument is the on-disk shape of systems.json.
type SystemsDocument struct {
	Systems []System `json:"systems" validate:"required,dive"`
}

// ConnectionsDocument is the on-disk shape of connections.json.
type ConnectionsDocument struct {
	Connections []Connection `json:"connections" validate:"required,dive"`
}

// SystemIndex indexes systems by id. On duplicate ids the last one wins.
func SystemIndex(systems []System) map[string]System {
	idx := make(map[string]System, len(systems))
	for _, s := range systems {
		idx[s.ID] = s
	}
	return idx
}

// ConnectionIndex indexes connections by id. On duplicate ids the last one wins.
func ConnectionIndex(connections []Connection) map[string]Connection {
	idx := make(map[string]Connection, len(connections))
	for _, c := range connections {
		idx[c.ID] = c
	}
	return idx
}

package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leonelm2/PotreroMobile/brackets"
	"github.com/leonelm2/PotreroMobile/models"
	"github.com/leonelm2/PotreroMobile/repositories"
	"github.com/leonelm2/PotreroMobile/storage"
)

// EventPublisher pushes live updates to websocket rooms. *brackets.Hub implements it.
type EventPublisher interface {
	BroadcastToRoom(roomID string, message interface{})
}

type TeamRef struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	LogoURL *string `json:"logoUrl,omitempty"`
}

// MatchView is a match with its teams resolved for display.
type MatchView struct {
	models.Match
	HomeTeam *TeamRef `json:"homeTeam"`
	AwayTeam *TeamRef `json:"awayTeam"`
}

type GroupView struct {
	Name  string    `json:"name"`
	Teams []TeamRef `json:"teams"`
}

// ChampionshipView shadows the id lists of models.Championship with
// resolved team references.
type ChampionshipView struct {
	models.Championship
	Teams    []TeamRef   `json:"teams"`
	Groups   []GroupView `json:"groups"`
	Matches  []MatchView `json:"matches"`
	Champion *TeamRef    `json:"champion,omitempty"`
}

// teamDirectory resolves team ids to display references.
type teamDirectory map[int]TeamRef

func loadTeamDirectory(ctx context.Context, teamRepo repositories.TeamRepository, uploader storage.FileUploader, ids []int) (teamDirectory, error) {
	dir := make(teamDirectory, len(ids))
	if len(ids) == 0 {
		return dir, nil
	}
	teams, err := teamRepo.List(ctx, repositories.TeamFilter{IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	for i := range teams {
		populateTeamLogoURLFunc(&teams[i], uploader)
		dir[teams[i].ID] = TeamRef{ID: teams[i].ID, Name: teams[i].Name, LogoURL: teams[i].LogoURL}
	}
	return dir, nil
}

func (d teamDirectory) names() map[int]string {
	out := make(map[int]string, len(d))
	for id, ref := range d {
		out[id] = ref.Name
	}
	return out
}

func (d teamDirectory) ref(id *int) *TeamRef {
	if id == nil {
		return nil
	}
	if ref, ok := d[*id]; ok {
		return &ref
	}
	return &TeamRef{ID: *id, Name: fmt.Sprintf("Team #%d", *id)}
}

func (d teamDirectory) refs(ids []int) []TeamRef {
	out := make([]TeamRef, 0, len(ids))
	for _, id := range ids {
		out = append(out, *d.ref(&id))
	}
	return out
}

func (d teamDirectory) matchView(m models.Match) MatchView {
	return MatchView{Match: m, HomeTeam: d.ref(m.HomeTeamID), AwayTeam: d.ref(m.AwayTeamID)}
}

func (d teamDirectory) matchViews(matches []models.Match) []MatchView {
	out := make([]MatchView, 0, len(matches))
	for _, m := range matches {
		out = append(out, d.matchView(m))
	}
	return out
}

func (d teamDirectory) championshipView(c *models.Championship) *ChampionshipView {
	view := &ChampionshipView{
		Championship: *c,
		Teams:        d.refs(c.TeamIDs),
		Groups:       make([]GroupView, 0, len(c.Groups)),
		Matches:      d.matchViews(c.Matches),
		Champion:     d.ref(c.ChampionID),
	}
	for _, g := range c.Groups {
		view.Groups = append(view.Groups, GroupView{Name: g.Name, Teams: d.refs(g.TeamIDs)})
	}
	return view
}

// matchTeamIDs collects every team referenced by the matches.
func matchTeamIDs(matches []models.Match) []int {
	seen := make(map[int]bool)
	ids := make([]int, 0)
	add := func(id *int) {
		if id != nil && !seen[*id] {
			seen[*id] = true
			ids = append(ids, *id)
		}
	}
	for _, m := range matches {
		add(m.HomeTeamID)
		add(m.AwayTeamID)
	}
	return ids
}

func populateTeamLogoURLFunc(team *models.Team, uploader storage.FileUploader) {
	if team != nil && team.LogoKey != nil && *team.LogoKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*team.LogoKey)
		if url != "" {
			team.LogoURL = &url
		}
	}
}

func publish(publisher EventPublisher, championshipID int, eventType string, payload interface{}) {
	if publisher == nil {
		return
	}
	room := brackets.RoomID(championshipID)
	publisher.BroadcastToRoom(room, brackets.WebSocketMessage{Type: eventType, Payload: payload, RoomID: room})
}

func loggerOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

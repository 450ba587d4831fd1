// ABOUTME: HTTP handlers for the feed API
// ABOUTME: Teams, briefings, audio export and generation status
package server

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/sportsbrief/internal/briefing"
	"github.com/harperreed/sportsbrief/internal/catalog"
	"github.com/harperreed/sportsbrief/internal/observability"
	"github.com/harperreed/sportsbrief/internal/store"
	"github.com/harperreed/sportsbrief/pkg/audio/decode"
	"github.com/harperreed/sportsbrief/pkg/audio/encode"
	"github.com/rs/zerolog/log"
)

// teamView is a catalog team with its follow state
type teamView struct {
	catalog.Team
	Liked bool `json:"liked"`
}

type leagueView struct {
	League string     `json:"league"`
	Teams  []teamView `json:"teams"`
}

// briefingSummary is a briefing without its audio payload
type briefingSummary struct {
	ID       string            `json:"id"`
	Date     string            `json:"date"`
	Title    string            `json:"title"`
	Summary  string            `json:"summary"`
	Sources  []briefing.Source `json:"sources"`
	AudioURL string            `json:"audioUrl"`
}

func errorJSON(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) likedSet() (map[string]bool, error) {
	liked, err := s.state.LikedTeams()
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(liked))
	for _, t := range liked {
		set[t.ID] = true
	}
	return set, nil
}

// handleTeams lists catalog teams matching ?q= grouped by league
func (s *Server) handleTeams(c *gin.Context) {
	liked, err := s.likedSet()
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}

	groups := catalog.GroupByLeague(s.catalog.Filter(c.Query("q")))
	out := make([]leagueView, 0, len(groups))
	for _, g := range groups {
		lv := leagueView{League: g.League}
		for _, t := range g.Teams {
			lv.Teams = append(lv.Teams, teamView{Team: t, Liked: liked[t.ID]})
		}
		out = append(out, lv)
	}

	c.JSON(http.StatusOK, gin.H{"query": c.Query("q"), "leagues": out})
}

func (s *Server) handleLikedTeams(c *gin.Context) {
	teams, err := s.state.LikedTeams()
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"teams": teams})
}

func (s *Server) handleToggleTeam(c *gin.Context) {
	team, err := s.catalog.Lookup(c.Param("id"))
	if err != nil {
		errorJSON(c, http.StatusNotFound, err)
		return
	}

	liked, err := s.state.ToggleTeam(team)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}

	log.Info().Str("team", team.ID).Bool("liked", liked).Msg("Team toggled")
	c.JSON(http.StatusOK, teamView{Team: team, Liked: liked})
}

func (s *Server) handleTeamLogo(c *gin.Context) {
	team, err := s.catalog.Lookup(c.Param("id"))
	if err != nil {
		errorJSON(c, http.StatusNotFound, err)
		return
	}
	if s.logos == nil || team.Logo == "" {
		errorJSON(c, http.StatusNotFound, errors.New("no logo for team"))
		return
	}

	path, err := s.logos.Download(c.Request.Context(), team.Logo)
	if err != nil {
		log.Warn().Err(err).Str("team", team.ID).Msg("Logo download failed")
		errorJSON(c, http.StatusBadGateway, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.File(path)
}

func (s *Server) handleBriefings(c *gin.Context) {
	list, err := s.state.Briefings()
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}

	out := make([]briefingSummary, 0, len(list))
	for _, b := range list {
		out = append(out, briefingSummary{
			ID:       b.ID,
			Date:     b.Date,
			Title:    b.Title,
			Summary:  b.Summary,
			Sources:  b.Sources,
			AudioURL: "/api/briefings/" + b.ID + "/audio.wav",
		})
	}
	c.JSON(http.StatusOK, gin.H{"briefings": out})
}

func (s *Server) lookupBriefing(c *gin.Context) (briefing.Briefing, bool) {
	b, err := s.state.Briefing(c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		errorJSON(c, http.StatusNotFound, err)
		return b, false
	}
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return b, false
	}
	return b, true
}

func (s *Server) handleBriefing(c *gin.Context) {
	b, ok := s.lookupBriefing(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, b)
}

// handleBriefingAudio serves the briefing payload as a WAV file
func (s *Server) handleBriefingAudio(c *gin.Context) {
	b, ok := s.lookupBriefing(c)
	if !ok {
		return
	}

	buf, err := decode.Payload(b.AudioBase64)
	if err != nil {
		observability.RecordDecodeError()
		errorJSON(c, http.StatusUnprocessableEntity, err)
		return
	}

	// the WAV encoder seeks back to patch the header, so render to a temp file
	tmp, err := os.CreateTemp("", "sportsbrief-*.wav")
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}
	tmp.Close()
	defer os.Remove(tmp.Name())

	if err := encode.WriteWAVFile(tmp.Name(), buf); err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}

	f, err := os.Open(tmp.Name())
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}

	c.DataFromReader(http.StatusOK, info.Size(), "audio/wav", f, map[string]string{
		"Content-Disposition": `inline; filename="briefing-` + b.ID + `.wav"`,
		"X-Duration-Seconds":  strconv.FormatFloat(buf.Seconds(), 'f', 3, 64),
	})
}

// handleGenerate starts a generation run in the background
func (s *Server) handleGenerate(c *gin.Context) {
	err := s.runner.TriggerAsync(s.config.GenerateCtx)
	switch {
	case errors.Is(err, briefing.ErrBusy):
		errorJSON(c, http.StatusConflict, err)
	case errors.Is(err, briefing.ErrNoTeams):
		errorJSON(c, http.StatusBadRequest, err)
	case err != nil:
		errorJSON(c, http.StatusInternalServerError, err)
	default:
		c.JSON(http.StatusAccepted, gin.H{"status": "generating"})
	}
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":    s.config.Version,
		"generation": s.runner.Status(),
	})
}

package lineup_service

import (
	"fmt"
	"strconv"

	"clubdesk/internal/models"
	"clubdesk/internal/service"
)

// matchDuration is treated as a constant; extra time is not
// re-derived into substitute minutes.
const matchDuration = 90

type lineupService struct{}

func NewLineupService() service.LineupService {
	return &lineupService{}
}

// ApplySubstitution records that the substitute in slot subIndex came
// on for replacedPlayerID at the given minute. The outgoing starter's
// minutes equal the clock at substitution; the substitute plays the
// remainder of the 90. The result is not clamped: minute beyond 90
// yields negative substitute minutes. If no starter carries
// replacedPlayerID the starter half of the update is silently skipped,
// so callers should only offer currently selected starters.
func (s *lineupService) ApplySubstitution(lineup models.Lineup, subIndex int, replacedPlayerID, minute string) (models.Lineup, error) {
	if subIndex < 0 || subIndex >= len(lineup.Substitutes) {
		return lineup, fmt.Errorf("substitute slot %d out of range", subIndex)
	}

	out := cloneLineup(lineup)
	at := parseMinute(minute)

	sub := &out.Substitutes[subIndex]
	sub.ReplacedPlayerID = replacedPlayerID
	sub.SubstitutionMinute = strconv.Itoa(at)
	sub.MinutesPlayed = strconv.Itoa(matchDuration - at)

	if replacedPlayerID != "" {
		for i := range out.Starters {
			if out.Starters[i].PlayerID == replacedPlayerID {
				out.Starters[i].MinutesPlayed = strconv.Itoa(at)
				break
			}
		}
	}

	return out, nil
}

// parseMinute treats anything that is not an integer as minute 0.
func parseMinute(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func cloneLineup(lineup models.Lineup) models.Lineup {
	out := lineup
	out.Starters = append([]models.LineupSlot(nil), lineup.Starters...)
	out.Substitutes = append([]models.SubstituteSlot(nil), lineup.Substitutes...)
	out.Staff = append([]string(nil), lineup.Staff...)
	return out
}

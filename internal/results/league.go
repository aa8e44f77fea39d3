package results

import (
	"sort"

	"github.com/clydesc/sailscore/internal/scoring"
)

// StandingRow is one sailor's line in a league table.
type StandingRow struct {
	MemberID     int64  `json:"memberId"`
	Name         string `json:"name"`
	RacesSailed  int    `json:"racesSailed"`
	RacesCounted int    `json:"racesCounted"`
	TotalPoints  int    `json:"totalPoints"`
	Scores       []int  `json:"scores"`
}

// LeagueStandings folds every finished race in the league into
// per-sailor totals with the club's discard rule.
//
// Every published result row carries its resolved points, computed
// when the result was saved; aggregation reads them as-is and never
// re-derives from positions. Helm and crew both receive the race's
// points: crewing counts equally toward the standings.
//
// The discard limit is ceil(0.66 * maxRaces) where maxRaces is the
// busiest sailor's race count; each sailor counts only their best
// scores up to that limit. Ties on total points order by member id so
// the table is deterministic.
func (s *Service) LeagueStandings(leagueID int64) ([]StandingRow, error) {
	if _, err := s.store.League(leagueID); err != nil {
		return nil, notFound(err)
	}

	races, err := s.store.FinishedRacesByLeague(leagueID)
	if err != nil {
		return nil, err
	}

	type sailor struct {
		id     int64
		name   string
		scores []int
	}
	sailors := make(map[int64]*sailor)
	var order []int64

	score := func(memberID int64, name string, points int) {
		sc, ok := sailors[memberID]
		if !ok {
			sc = &sailor{id: memberID, name: name}
			sailors[memberID] = sc
			order = append(order, memberID)
		}
		sc.scores = append(sc.scores, points)
	}

	for _, race := range races {
		scored, err := s.store.PublishedPointsByRace(race.ID)
		if err != nil {
			return nil, err
		}
		for _, row := range scored {
			points := 0
			if row.Points.Valid {
				points = int(row.Points.Int64)
			}

			score(row.HelmID, row.HelmName, points)
			if row.CrewID.Valid {
				score(row.CrewID.Int64, row.CrewName.String, points)
			}
		}
	}

	if len(sailors) == 0 {
		return []StandingRow{}, nil
	}

	maxRaces := 0
	for _, sc := range sailors {
		if len(sc.scores) > maxRaces {
			maxRaces = len(sc.scores)
		}
	}
	limit := scoring.DiscardLimit(maxRaces)

	standings := make([]StandingRow, 0, len(sailors))
	for _, id := range order {
		sc := sailors[id]
		counted := limit
		if counted > len(sc.scores) {
			counted = len(sc.scores)
		}
		standings = append(standings, StandingRow{
			MemberID:     sc.id,
			Name:         sc.name,
			RacesSailed:  len(sc.scores),
			RacesCounted: counted,
			TotalPoints:  scoring.BestScores(sc.scores, limit),
			Scores:       sc.scores,
		})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].TotalPoints != standings[j].TotalPoints {
			return standings[i].TotalPoints > standings[j].TotalPoints
		}
		return standings[i].MemberID < standings[j].MemberID
	})

	return standings, nil
}

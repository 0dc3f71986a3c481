package memory

import (
	"time"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/catalog"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/club"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/league"
)

const (
	LeagueIDSerieOuro  = "br-serie-ouro-2026"
	LeagueIDSeriePrata = "br-serie-prata-2026"

	ConfederationIDBrasil = "confed-brasil"

	GameEdition26 = "fc26"
)

func SeedLeagues() []league.League {
	season := league.Period{
		From: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC),
	}
	return []league.League{
		{
			ID:                     LeagueIDSerieOuro,
			Name:                   "Série Ouro",
			ConfederationID:        ConfederationIDBrasil,
			GameEdition:            GameEdition26,
			RosterCap:              23,
			StartingBalance:        250_000_000,
			ReleaseMultiplier:      1.5,
			MinResalePercent:       60,
			AllowNegativePurchases: false,
			WalkoverPenalty:        5_000_000,
			MatchDuration:          90 * time.Minute,
			AllowedWeekdays: []time.Weekday{
				time.Tuesday, time.Wednesday, time.Thursday, time.Saturday, time.Sunday,
			},
			DailyRanges: []league.ClockRange{
				{Start: "18:00", End: "23:00"},
			},
			CalendarPeriods:     []league.Period{season},
			MaxReschedules:      2,
			MinRescheduleNotice: 24 * time.Hour,
			ScoreConfirmWindow:  48 * time.Hour,
			Timezone:            "America/Sao_Paulo",
		},
		{
			ID:                     LeagueIDSeriePrata,
			Name:                   "Série Prata",
			ConfederationID:        ConfederationIDBrasil,
			GameEdition:            GameEdition26,
			RosterCap:              20,
			StartingBalance:        150_000_000,
			ReleaseMultiplier:      1.4,
			MinResalePercent:       50,
			AllowNegativePurchases: true,
			WalkoverPenalty:        3_000_000,
			MatchDuration:          90 * time.Minute,
			AllowedWeekdays: []time.Weekday{
				time.Monday, time.Wednesday, time.Friday, time.Saturday,
			},
			DailyRanges: []league.ClockRange{
				{Start: "19:00", End: "23:30"},
			},
			CalendarPeriods:     []league.Period{season},
			MaxReschedules:      3,
			MinRescheduleNotice: 12 * time.Hour,
			ScoreConfirmWindow:  24 * time.Hour,
			Timezone:            "America/Sao_Paulo",
		},
	}
}

func SeedClubs() []club.Club {
	return []club.Club{
		{ID: "ouro-furia", LeagueID: LeagueIDSerieOuro, OwnerUserID: "user-rafa", Name: "Fúria FC"},
		{ID: "ouro-tempestade", LeagueID: LeagueIDSerieOuro, OwnerUserID: "user-dudu", Name: "Tempestade EC"},
		{ID: "ouro-leoes", LeagueID: LeagueIDSerieOuro, OwnerUserID: "user-carlao", Name: "Leões do Norte"},
		{ID: "prata-mare", LeagueID: LeagueIDSeriePrata, OwnerUserID: "user-nando", Name: "Maré Alta"},
		{ID: "prata-vendaval", LeagueID: LeagueIDSeriePrata, OwnerUserID: "user-pri", Name: "Vendaval SC"},
	}
}

func SeedPlayers() []catalog.Player {
	return []catalog.Player{
		{ID: "fc26-gk-001", GameEdition: GameEdition26, Name: "Matheus Cunha Alves", Position: "GK", MarketValue: 18_000_000, Wage: 120_000, Overall: 84},
		{ID: "fc26-gk-002", GameEdition: GameEdition26, Name: "Iñaki Robles", Position: "GK", MarketValue: 11_500_000, Wage: 85_000, Overall: 81},
		{ID: "fc26-cb-001", GameEdition: GameEdition26, Name: "Bruno Sarmiento", Position: "CB", MarketValue: 24_000_000, Wage: 150_000, Overall: 85},
		{ID: "fc26-cb-002", GameEdition: GameEdition26, Name: "Yannick Mbemba", Position: "CB", MarketValue: 16_000_000, Wage: 110_000, Overall: 82},
		{ID: "fc26-lb-001", GameEdition: GameEdition26, Name: "Renan Lodi Filho", Position: "LB", MarketValue: 14_000_000, Wage: 95_000, Overall: 81},
		{ID: "fc26-cm-001", GameEdition: GameEdition26, Name: "Tomás Querol", Position: "CM", MarketValue: 32_000_000, Wage: 190_000, Overall: 86},
		{ID: "fc26-cm-002", GameEdition: GameEdition26, Name: "Davi Monteiro", Position: "CM", MarketValue: 21_000_000, Wage: 140_000, Overall: 83},
		{ID: "fc26-am-001", GameEdition: GameEdition26, Name: "Kenji Okafor", Position: "CAM", MarketValue: 45_000_000, Wage: 260_000, Overall: 88},
		{ID: "fc26-st-001", GameEdition: GameEdition26, Name: "Erik Johansson", Position: "ST", MarketValue: 60_000_000, Wage: 320_000, Overall: 89},
		{ID: "fc26-st-002", GameEdition: GameEdition26, Name: "Paulo Vitor Sales", Position: "ST", MarketValue: 27_000_000, Wage: 170_000, Overall: 84},
	}
}

package dataprocessing

import (
	"sort"
	"time"

	"salespulse/pkg/contracts/domain"
)

type yearMonth struct {
	year  int
	month int
}

type yearChannel struct {
	year    int
	channel string
}

type volumeAcc struct {
	volume  float64
	clients map[string]struct{}
}

func (a *volumeAcc) add(r domain.Transaction) {
	a.volume += r.HL
	a.clients[r.CodigoCliente] = struct{}{}
}

// PrepareYoY builds the year-to-date aggregates: rows of every year up to
// and including the month of to, grouped by year and month and by year and
// channel. Volume is in HL and Clients counts distinct client codes.
func PrepareYoY(rows []domain.Transaction, to time.Time) domain.YearOverYear {
	yoy := domain.YearOverYear{
		Months:   []domain.MonthlyVolume{},
		Channels: []domain.ChannelVolume{},
	}
	if len(rows) == 0 {
		return yoy
	}

	refMonth := int(to.Month())
	byMonth := make(map[yearMonth]*volumeAcc)
	byChannel := make(map[yearChannel]*volumeAcc)

	for _, r := range rows {
		year, month := r.Fecha.Year(), int(r.Fecha.Month())
		if month > refMonth {
			continue
		}

		mk := yearMonth{year, month}
		if byMonth[mk] == nil {
			byMonth[mk] = &volumeAcc{clients: make(map[string]struct{})}
		}
		byMonth[mk].add(r)

		ck := yearChannel{year, r.Canal}
		if byChannel[ck] == nil {
			byChannel[ck] = &volumeAcc{clients: make(map[string]struct{})}
		}
		byChannel[ck].add(r)
	}

	for k, acc := range byMonth {
		yoy.Months = append(yoy.Months, domain.MonthlyVolume{
			Year: k.year, Month: k.month, Volume: acc.volume, Clients: len(acc.clients),
		})
	}
	for k, acc := range byChannel {
		yoy.Channels = append(yoy.Channels, domain.ChannelVolume{
			Year: k.year, Channel: k.channel, Volume: acc.volume, Clients: len(acc.clients),
		})
	}

	sort.Slice(yoy.Months, func(i, j int) bool {
		a, b := yoy.Months[i], yoy.Months[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Month < b.Month
	})
	sort.Slice(yoy.Channels, func(i, j int) bool {
		a, b := yoy.Channels[i], yoy.Channels[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Channel < b.Channel
	})

	return yoy
}

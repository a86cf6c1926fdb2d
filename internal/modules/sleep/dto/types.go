package dto

import "time"

type NightOutput struct {
	ID        int64
	StartTime time.Time
	EndTime   time.Time
	Quality   int
	Open      bool
	Rated     bool
}

type StopInput struct {
	NightID int64
}

type RateInput struct {
	NightID int64
	Quality int
}

type ExportInput struct {
	Dir string
}

type ExportOutput struct {
	Paths []string
}

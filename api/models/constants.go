package models

var Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

type ElectionType string

const (
	TypeZonalCouncil     ElectionType = "zonal_council"
	TypeCentralCommittee ElectionType = "central_committee"
)

var ValidElectionTypes = map[ElectionType]string{
	TypeZonalCouncil:     "Zonal Council",
	TypeCentralCommittee: "Central Committee",
}

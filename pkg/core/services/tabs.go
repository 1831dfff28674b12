package services

import "github.com/kdeguzman/district4-tool/pkg/core/sheetparse"

// Tab titles in the district spreadsheet.
const (
	TabAccounts      = "Accounts"
	TabReport        = "Report"
	TabAOPT          = "AOPT"
	TabPrayerRequest = "PrayerRequest"
)

// Logical column names used across sync, export, and targeted updates.
// The alias lists accept both the current header spellings and the
// legacy ones still present on older copies of the sheet ("Age" for
// "Area Number", "Sex" for "Church ID").
var accountFields = []sheetparse.Field{
	{Name: "name", Aliases: []string{"Name"}},
	{Name: "username", Aliases: []string{"UserName"}},
	{Name: "password", Aliases: []string{"Password"}},
	{Name: "church_address", Aliases: []string{"Church Address"}},
	{Name: "area_number", Aliases: []string{"Area Number", "Age"}},
	{Name: "church_id", Aliases: []string{"Church ID", "Sex"}},
	{Name: "contact", Aliases: []string{"Contact #"}},
	{Name: "birthday", Aliases: []string{"Birth Day"}},
	{Name: "position", Aliases: []string{"Position"}},
}

var reportFields = []sheetparse.Field{
	{Name: "church", Aliases: []string{"church"}},
	{Name: "pastor", Aliases: []string{"pastor"}},
	{Name: "address", Aliases: []string{"address"}},
	{Name: "adult", Aliases: []string{"adult"}},
	{Name: "youth", Aliases: []string{"youth"}},
	{Name: "children", Aliases: []string{"children"}},
	{Name: "tithes", Aliases: []string{"tithes"}},
	{Name: "offering", Aliases: []string{"offering"}},
	{Name: "personal_tithes", Aliases: []string{"personal tithes"}},
	{Name: "mission_offering", Aliases: []string{"mission offering"}},
	{Name: "received_jesus", Aliases: []string{"received jesus"}},
	{Name: "existing_bible_study", Aliases: []string{"existing bible study"}},
	{Name: "new_bible_study", Aliases: []string{"new bible study"}},
	{Name: "water_baptized", Aliases: []string{"water baptized"}},
	{Name: "holy_spirit_baptized", Aliases: []string{"holy spirit baptized"}},
	{Name: "childrens_dedication", Aliases: []string{"childrens dedication"}},
	{Name: "healed", Aliases: []string{"healed"}},
	{Name: "activity_date", Aliases: []string{"activity_date"}},
	{Name: "amount_to_send", Aliases: []string{"amount to send"}},
	{Name: "status", Aliases: []string{"status"}},
}

var aoptFields = []sheetparse.Field{
	{Name: "month", Aliases: []string{"Month"}},
	{Name: "amount", Aliases: []string{"Amount"}},
}

var prayerRequestFields = []sheetparse.Field{
	{Name: "church_name", Aliases: []string{"Church Name"}},
	{Name: "submitted_by", Aliases: []string{"Submitted By"}},
	{Name: "request_id", Aliases: []string{"Request ID"}},
	{Name: "title", Aliases: []string{"Prayer Request Title"}},
	{Name: "request_date", Aliases: []string{"Prayer Request Date"}},
	{Name: "request_text", Aliases: []string{"Prayer Request"}},
	{Name: "status", Aliases: []string{"Status"}},
	{Name: "pastors_praying", Aliases: []string{"Pastor's Praying"}},
	{Name: "answered_date", Aliases: []string{"Answered Date"}},
}

// reportExportOrder is the sheet's physical column order for appended
// Report rows.
var reportExportOrder = []string{
	"church", "pastor", "address",
	"adult", "youth", "children",
	"tithes", "offering", "personal_tithes", "mission_offering",
	"received_jesus", "existing_bible_study", "new_bible_study",
	"water_baptized", "holy_spirit_baptized", "childrens_dedication", "healed",
	"activity_date", "amount_to_send", "status",
}

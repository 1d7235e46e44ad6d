package stats

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/drew/studydash/internal/model"
)

// fieldKind is the JSON type a record field must carry
type fieldKind int

const (
	kindString fieldKind = iota
	kindNumber
	// kindLabel accepts a string or a number, e.g. an hour "07:00" or 7
	kindLabel
)

type field struct {
	name string
	kind fieldKind
}

// contract checks an array of objects where every element carries fields
func checkRecords(endpoint string, doc gjson.Result, fields ...field) error {
	if !doc.IsArray() {
		return &ShapeError{Endpoint: endpoint, Reason: "expected an array of records"}
	}
	var err error
	doc.ForEach(func(key, rec gjson.Result) bool {
		path := key.String()
		if !rec.IsObject() {
			err = &ShapeError{Endpoint: endpoint, Path: path, Reason: "expected an object"}
			return false
		}
		for _, f := range fields {
			v := rec.Get(f.name)
			if !v.Exists() {
				err = &ShapeError{Endpoint: endpoint, Path: path + "." + f.name, Reason: "missing field"}
				return false
			}
			if !kindMatches(v, f.kind) {
				err = &ShapeError{Endpoint: endpoint, Path: path + "." + f.name, Reason: "unexpected type " + v.Type.String()}
				return false
			}
		}
		return true
	})
	return err
}

func kindMatches(v gjson.Result, kind fieldKind) bool {
	switch kind {
	case kindString:
		return v.Type == gjson.String
	case kindNumber:
		return v.Type == gjson.Number
	default:
		return v.Type == gjson.String || v.Type == gjson.Number
	}
}

// checkCounts checks a mapping of label to number
func checkCounts(endpoint string, doc gjson.Result) error {
	if !doc.IsObject() {
		return &ShapeError{Endpoint: endpoint, Reason: "expected a mapping of label to count"}
	}
	var err error
	doc.ForEach(func(key, v gjson.Result) bool {
		if v.Type != gjson.Number {
			err = &ShapeError{Endpoint: endpoint, Path: key.String(), Reason: "count is not a number"}
			return false
		}
		return true
	})
	return err
}

func parse(endpoint string, body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, &ShapeError{Endpoint: endpoint, Reason: "body is not valid JSON"}
	}
	return gjson.ParseBytes(body), nil
}

// hourLabel normalises an hour field: 7 and "7" become "7", "07:00" is kept
func hourLabel(v gjson.Result) string {
	if v.Type == gjson.Number {
		return strconv.Itoa(int(v.Int()))
	}
	return strings.TrimSpace(v.String())
}

func groupKey(v gjson.Result) string {
	if v.Type == gjson.Number {
		return strconv.Itoa(int(v.Int()))
	}
	return v.String()
}

func decodeHourCounts(endpoint string, body []byte) ([]model.HourCount, error) {
	doc, err := parse(endpoint, body)
	if err != nil {
		return nil, err
	}
	if err := checkRecords(endpoint, doc, field{"hour", kindLabel}, field{"meal_count", kindNumber}); err != nil {
		return nil, err
	}
	var out []model.HourCount
	for _, rec := range doc.Array() {
		out = append(out, model.HourCount{
			Hour:      hourLabel(rec.Get("hour")),
			MealCount: int(rec.Get("meal_count").Int()),
		})
	}
	return out, nil
}

func decodeDateCounts(endpoint string, body []byte) ([]model.DateCount, error) {
	doc, err := parse(endpoint, body)
	if err != nil {
		return nil, err
	}
	if err := checkRecords(endpoint, doc, field{"date", kindString}, field{"meal_count", kindNumber}); err != nil {
		return nil, err
	}
	var out []model.DateCount
	for _, rec := range doc.Array() {
		out = append(out, model.DateCount{
			Date:      rec.Get("date").String(),
			MealCount: int(rec.Get("meal_count").Int()),
		})
	}
	return out, nil
}

func decodeGroupDateCounts(endpoint string, body []byte) ([]model.GroupDateCount, error) {
	doc, err := parse(endpoint, body)
	if err != nil {
		return nil, err
	}
	if err := checkRecords(endpoint, doc,
		field{"date", kindString}, field{"study_group", kindLabel}, field{"meal_count", kindNumber}); err != nil {
		return nil, err
	}
	var out []model.GroupDateCount
	for _, rec := range doc.Array() {
		out = append(out, model.GroupDateCount{
			Date:       rec.Get("date").String(),
			StudyGroup: groupKey(rec.Get("study_group")),
			MealCount:  int(rec.Get("meal_count").Int()),
		})
	}
	return out, nil
}

func decodeDateUsers(endpoint string, body []byte) ([]model.DateUsers, error) {
	doc, err := parse(endpoint, body)
	if err != nil {
		return nil, err
	}
	return dateUsers(endpoint, "", doc)
}

func dateUsers(endpoint, prefix string, doc gjson.Result) ([]model.DateUsers, error) {
	if err := checkRecords(endpoint, doc, field{"date", kindString}, field{"user_count", kindNumber}); err != nil {
		if se, ok := err.(*ShapeError); ok && prefix != "" {
			se.Path = strings.TrimSuffix(prefix+"."+se.Path, ".")
		}
		return nil, err
	}
	out := []model.DateUsers{}
	for _, rec := range doc.Array() {
		out = append(out, model.DateUsers{
			Date:      rec.Get("date").String(),
			UserCount: int(rec.Get("user_count").Int()),
		})
	}
	return out, nil
}

func decodeMessageDays(endpoint string, body []byte) ([]model.MessageDay, error) {
	doc, err := parse(endpoint, body)
	if err != nil {
		return nil, err
	}
	if err := checkRecords(endpoint, doc,
		field{"date", kindString}, field{"assistant_count", kindNumber}, field{"user_count", kindNumber}); err != nil {
		return nil, err
	}
	var out []model.MessageDay
	for _, rec := range doc.Array() {
		out = append(out, model.MessageDay{
			Date:           rec.Get("date").String(),
			AssistantCount: int(rec.Get("assistant_count").Int()),
			UserCount:      int(rec.Get("user_count").Int()),
		})
	}
	return out, nil
}

func decodeHourUsers(endpoint string, body []byte) ([]model.HourUsers, error) {
	doc, err := parse(endpoint, body)
	if err != nil {
		return nil, err
	}
	if err := checkRecords(endpoint, doc, field{"hour", kindLabel}, field{"user_count", kindNumber}); err != nil {
		return nil, err
	}
	var out []model.HourUsers
	for _, rec := range doc.Array() {
		out = append(out, model.HourUsers{
			Hour:      hourLabel(rec.Get("hour")),
			UserCount: int(rec.Get("user_count").Int()),
		})
	}
	return out, nil
}

func decodeGroupMessages(endpoint string, body []byte) (*model.GroupMessages, error) {
	doc, err := parse(endpoint, body)
	if err != nil {
		return nil, err
	}
	groups := doc.Get("study_groups")
	if !groups.IsObject() {
		return nil, &ShapeError{Endpoint: endpoint, Path: "study_groups", Reason: "expected a mapping of group to records"}
	}
	out := &model.GroupMessages{ByGroup: map[string][]model.DateUsers{}}
	groups.ForEach(func(key, recs gjson.Result) bool {
		var rows []model.DateUsers
		rows, err = dateUsers(endpoint, "study_groups."+key.String(), recs)
		if err != nil {
			return false
		}
		out.Groups = append(out.Groups, key.String())
		out.ByGroup[key.String()] = rows
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func decodeActiveInactive(endpoint string, body []byte) (*model.ActiveInactive, error) {
	doc, err := parse(endpoint, body)
	if err != nil {
		return nil, err
	}
	if !doc.IsObject() {
		return nil, &ShapeError{Endpoint: endpoint, Reason: "expected a mapping of group to [active, inactive]"}
	}
	out := &model.ActiveInactive{ByGroup: map[string]model.ActivePair{}}
	doc.ForEach(func(key, pair gjson.Result) bool {
		vals := pair.Array()
		if !pair.IsArray() || len(vals) != 2 || vals[0].Type != gjson.Number || vals[1].Type != gjson.Number {
			err = &ShapeError{Endpoint: endpoint, Path: key.String(), Reason: "expected [active, inactive] numbers"}
			return false
		}
		out.Groups = append(out.Groups, key.String())
		out.ByGroup[key.String()] = model.ActivePair{Active: int(vals[0].Int()), Inactive: int(vals[1].Int())}
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func decodeDistribution(endpoint string, body []byte) (model.Distribution, error) {
	doc, err := parse(endpoint, body)
	if err != nil {
		return nil, err
	}
	if err := checkCounts(endpoint, doc); err != nil {
		return nil, err
	}
	out := model.Distribution{}
	doc.ForEach(func(key, v gjson.Result) bool {
		out = append(out, model.Bucket{Label: key.String(), Count: int(v.Int())})
		return true
	})
	return out, nil
}

// describe is used in log lines for short bodies
func describe(body []byte) string {
	const limit = 120
	if len(body) > limit {
		return fmt.Sprintf("%s... (%d bytes)", body[:limit], len(body))
	}
	return string(body)
}

package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-study-planner/internal/plan"
)

// shape records which required fields the response actually carried, since
// decoding into plan.Plan cannot tell a missing day from Monday.
type shape struct {
	Days []struct {
		Day      *string `json:"day"`
		Sessions []struct {
			Time  *string `json:"time"`
			Type  *string `json:"type"`
			Title *string `json:"title"`
		} `json:"sessions"`
	} `json:"days"`
}

// parsePlan turns the raw service response into a validated plan.
func parsePlan(content string, now time.Time) (*plan.Plan, error) {
	content = strings.TrimSpace(content)

	var object map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &object); err != nil {
		return nil, newError(KindMalformedResponse, "response is not a single JSON object", err)
	}
	if object == nil {
		return nil, newError(KindMalformedResponse, "response is null", nil)
	}

	var s shape
	if err := json.Unmarshal([]byte(content), &s); err != nil {
		return nil, newError(KindInvalidPlanStructure, describeDecodeError(err), err)
	}
	if len(s.Days) == 0 {
		return nil, newError(KindInvalidPlanStructure, "days: missing or empty", nil)
	}
	var missing []string
	for i, d := range s.Days {
		if d.Day == nil {
			missing = append(missing, fmt.Sprintf("days[%d].day", i))
		}
		for j, sess := range d.Sessions {
			path := fmt.Sprintf("days[%d].sessions[%d]", i, j)
			if sess.Time == nil {
				missing = append(missing, path+".time")
			}
			if sess.Type == nil {
				missing = append(missing, path+".type")
			}
			if sess.Title == nil {
				missing = append(missing, path+".title")
			}
		}
	}
	if len(missing) > 0 {
		return nil, newError(KindInvalidPlanStructure, "missing "+strings.Join(missing, ", "), nil)
	}

	p := &plan.Plan{}
	if err := json.Unmarshal([]byte(content), p); err != nil {
		return nil, newError(KindInvalidPlanStructure, describeDecodeError(err), err)
	}

	plan.Normalize(p, now)
	if err := plan.Validate(p); err != nil {
		return nil, newError(KindInvalidPlanStructure, strings.TrimPrefix(err.Error(), plan.ErrInvalidPlan.Error()+": "), err)
	}
	return p, nil
}

func describeDecodeError(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("%s: expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value)
	}
	return err.Error()
}

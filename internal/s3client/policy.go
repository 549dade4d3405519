package s3client

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	s3v1alpha1 "github.com/cloud37-dev/s3-operator/api/v1alpha1"
)

// awsStatement is the wire form of a policy statement. Single-element
// Action/Resource lists still marshal as arrays so comparison stays stable.
type awsStatement struct {
	Sid       string                       `json:"Sid,omitempty"`
	Effect    string                       `json:"Effect"`
	Principal interface{}                  `json:"Principal,omitempty"`
	Action    []string                     `json:"Action"`
	Resource  []string                     `json:"Resource"`
	Condition map[string]map[string]string `json:"Condition,omitempty"`
}

type awsPolicy struct {
	Version   string         `json:"Version"`
	Statement []awsStatement `json:"Statement"`
}

// BuildPolicyJSON renders a policy document into provider wire form.
func BuildPolicyJSON(doc *s3v1alpha1.PolicyDocument) (string, error) {
	if doc == nil || len(doc.Statement) == 0 {
		return "", fmt.Errorf("%w: policy document has no statements", ErrInvalidArgument)
	}

	out := awsPolicy{Version: doc.Version}
	if out.Version == "" {
		out.Version = "2012-10-17"
	}
	for _, st := range doc.Statement {
		actions := append([]string(nil), st.Action...)
		resources := append([]string(nil), st.Resource...)
		sort.Strings(actions)
		sort.Strings(resources)
		ws := awsStatement{
			Sid:       st.SID,
			Effect:    st.Effect,
			Action:    actions,
			Resource:  resources,
			Condition: st.Condition,
		}
		if st.Principal != "" {
			if st.Principal == "*" {
				ws.Principal = "*"
			} else {
				ws.Principal = map[string]string{"AWS": st.Principal}
			}
		}
		out.Statement = append(out.Statement, ws)
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return string(raw), nil
}

// NormalizePolicyJSON canonicalizes arbitrary policy JSON so that two
// semantically equal documents compare byte-equal: map keys sorted (Go's
// marshaler guarantees this), scalar Action/Resource/Principal values
// promoted to lists where AWS allows either form, lists sorted, statements
// ordered by Sid then by content.
func NormalizePolicyJSON(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return "", fmt.Errorf("%w: policy is not valid JSON: %v", ErrInvalidArgument, err)
	}

	if stmts, ok := doc["Statement"].([]interface{}); ok {
		for _, s := range stmts {
			if m, ok := s.(map[string]interface{}); ok {
				normalizeStatement(m)
			}
		}
		sort.SliceStable(stmts, func(i, j int) bool {
			return statementSortKey(stmts[i]) < statementSortKey(stmts[j])
		})
		doc["Statement"] = stmts
	} else if m, ok := doc["Statement"].(map[string]interface{}); ok {
		normalizeStatement(m)
		doc["Statement"] = []interface{}{m}
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func normalizeStatement(m map[string]interface{}) {
	for _, field := range []string{"Action", "Resource", "NotAction", "NotResource"} {
		if v, ok := m[field]; ok {
			m[field] = toSortedList(v)
		}
	}
	// "*" and {"AWS":"*"} grant the same thing; compare them as one form
	switch p := m["Principal"].(type) {
	case string:
		m["Principal"] = map[string]interface{}{"AWS": []interface{}{p}}
	case map[string]interface{}:
		for k, v := range p {
			p[k] = toSortedList(v)
		}
	}
}

func toSortedList(v interface{}) []interface{} {
	var list []interface{}
	switch vv := v.(type) {
	case []interface{}:
		list = vv
	default:
		list = []interface{}{v}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return fmt.Sprint(list[i]) < fmt.Sprint(list[j])
	})
	return list
}

func statementSortKey(s interface{}) string {
	m, ok := s.(map[string]interface{})
	if !ok {
		return fmt.Sprint(s)
	}
	if sid, ok := m["Sid"].(string); ok && sid != "" {
		return "sid:" + sid
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Sprint(m)
	}
	return "doc:" + string(raw)
}

// PoliciesEqual compares two raw policy documents semantically.
func PoliciesEqual(a, b string) (bool, error) {
	na, err := NormalizePolicyJSON(a)
	if err != nil {
		return false, err
	}
	nb, err := NormalizePolicyJSON(b)
	if err != nil {
		return false, err
	}
	return na == nb, nil
}

// ValidatePolicyDocument applies the structural checks remote providers
// enforce, so obviously broken documents fail before any remote call.
func ValidatePolicyDocument(doc *s3v1alpha1.PolicyDocument, requirePrincipal bool) error {
	if doc == nil || len(doc.Statement) == 0 {
		return fmt.Errorf("%w: policy document has no statements", ErrInvalidArgument)
	}
	for i, st := range doc.Statement {
		if st.Effect != "Allow" && st.Effect != "Deny" {
			return fmt.Errorf("%w: statement %d: effect must be Allow or Deny", ErrInvalidArgument, i)
		}
		if len(st.Action) == 0 {
			return fmt.Errorf("%w: statement %d: at least one action is required", ErrInvalidArgument, i)
		}
		if len(st.Resource) == 0 {
			return fmt.Errorf("%w: statement %d: at least one resource is required", ErrInvalidArgument, i)
		}
		if requirePrincipal && st.Principal == "" {
			return fmt.Errorf("%w: statement %d: principal is required in bucket policies", ErrInvalidArgument, i)
		}
	}
	return nil
}

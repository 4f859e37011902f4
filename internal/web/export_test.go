package web_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/starford/raido/internal/schema"
	"github.com/starford/raido/internal/web"
)

func createComplaint(t *testing.T, h http.Handler) string {
	t.Helper()
	w := postForm(t, h, "/save/record", url.Values{
		"type":           {"r06_customer_complaints"},
		"customer_name":  {"Mrs Smith"},
		"complaint_date": {"02/01/2024"},
		"nature":         {"Inverter noise"},
		"outcome":        {"Resolved"},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("save = %d, body: %s", w.Code, w.Body.String())
	}
	u, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatal(err)
	}
	return u.Query().Get("id")
}

func TestExportPrintAllFieldsInOrder(t *testing.T) {
	h, _ := newHandler(t, web.Options{Version: "9.9.9"})
	id := createComplaint(t, h)

	w := get(t, h, "/export?mode=print&id="+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()

	// Every declared field label appears, even when the value is empty,
	// in declaration order.
	last := 0
	for _, f := range schema.ForType("r06_customer_complaints").Fields {
		idx := strings.Index(body[last:], f.Label)
		if idx < 0 {
			t.Fatalf("label %q missing or out of order", f.Label)
		}
		last += idx
	}

	if !strings.Contains(body, "02/01/2024") {
		t.Error("date not in display form")
	}
	if !strings.Contains(body, "v9.9.9") {
		t.Error("footer missing portal version")
	}
}

func TestExportDocHeaders(t *testing.T) {
	h, _ := newHandler(t, web.Options{})
	id := createComplaint(t, h)

	w := get(t, h, "/export?mode=doc&id="+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/msword" {
		t.Errorf("content type = %q", ct)
	}
	cd := w.Header().Get("Content-Disposition")
	if !strings.HasPrefix(cd, "attachment;") || !strings.Contains(cd, ".doc") {
		t.Errorf("disposition = %q", cd)
	}
	if !strings.Contains(w.Body.String(), "Mrs Smith") {
		t.Error("doc body missing record data")
	}
}

func TestExportLogWholeRegister(t *testing.T) {
	h, _ := newHandler(t, web.Options{})
	createComplaint(t, h)
	createComplaint(t, h)

	w := get(t, h, "/export?mode=log&type=r06_customer_complaints", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "full log") {
		t.Error("log heading missing")
	}
	if strings.Count(body, "Mrs Smith") < 2 {
		t.Error("log missing rows")
	}
	// Legacy slugs resolve for the log too.
	w = get(t, h, "/export?mode=log&type=complaints", nil)
	if w.Code != http.StatusOK || strings.Count(w.Body.String(), "Mrs Smith") < 2 {
		t.Error("legacy slug log failed")
	}
}

func TestExportTrainingMatrixLog(t *testing.T) {
	h, _ := newHandler(t, web.Options{})

	addEmployee := func(name, course, renewal string) string {
		t.Helper()
		w := postForm(t, h, "/save/employee", url.Values{"employee_name": {name}})
		if w.Code != http.StatusSeeOther {
			t.Fatalf("employee save = %d, body: %s", w.Code, w.Body.String())
		}
		u, err := url.Parse(w.Header().Get("Location"))
		if err != nil {
			t.Fatal(err)
		}
		empID := u.Query().Get("id")
		w = postForm(t, h, "/save/training", url.Values{
			"employee_id":  {empID},
			"course_name":  {course},
			"date_course":  {"01/02/2024"},
			"renewal_date": {renewal},
		})
		if w.Code != http.StatusSeeOther {
			t.Fatalf("training save = %d, body: %s", w.Code, w.Body.String())
		}
		return empID
	}

	empID := addEmployee("Pat Lee", "18th Edition Wiring", "01/06/2026")
	addEmployee("Sam Cole", "First Aid", "15/03/2027")

	// The full matrix names every employee and course.
	w := get(t, h, "/export?mode=log&type=r07_training_matrix", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Training Matrix", "Pat Lee", "18th Edition Wiring", "Sam Cole", "First Aid", "01/06/2026"} {
		if !strings.Contains(body, want) {
			t.Errorf("matrix log missing %q", want)
		}
	}

	// Filtered by employee it only carries that employee's courses.
	w = get(t, h, "/export?mode=log&type=r07_training_matrix&emp="+empID, nil)
	body = w.Body.String()
	if !strings.Contains(body, "Pat Lee") || !strings.Contains(body, "18th Edition Wiring") {
		t.Error("filtered matrix missing the employee's courses")
	}
	if strings.Contains(body, "Sam Cole") || strings.Contains(body, "First Aid") {
		t.Error("filtered matrix leaked other employees")
	}
}

func TestExportProjectIncludesChecklist(t *testing.T) {
	h, _ := newHandler(t, web.Options{})

	w := postForm(t, h, "/save/project", url.Values{"title": {"Site C"}})
	u, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatal(err)
	}
	id := u.Query().Get("id")

	w = get(t, h, "/export?mode=print&id="+id, nil)
	body := w.Body.String()
	if !strings.Contains(body, "Handover checklist") {
		t.Error("project export missing checklist")
	}
	if !strings.Contains(body, "Outstanding") {
		t.Error("unchecked items should show as outstanding")
	}
}

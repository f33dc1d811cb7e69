package participant_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterd/rosterd/internal/participant"
)

func makeSectionStudents(section string, count int) []participant.Student {
	students := make([]participant.Student, 0, count)
	for i := 0; i < count; i++ {
		students = append(students, participant.Student{
			CourseID:    "CS101",
			Name:        fmt.Sprintf("Student %03d", i),
			Email:       fmt.Sprintf("%s.%03d@example.com", section, i),
			SectionName: section,
			TeamName:    fmt.Sprintf("%s-team-%d", section, i/4),
		})
	}
	return students
}

func TestValidateSectionsAndTeams_SingleStudentAlwaysValid(t *testing.T) {
	f := newFixture(nil)

	incoming := makeSectionStudents("A", 1)
	err := f.svc.ValidateSectionsAndTeams(context.Background(), incoming, "CS101")
	assert.NoError(t, err)
}

func TestValidateSectionsAndTeams_SectionAtLimit(t *testing.T) {
	f := newFixture(nil)

	incoming := makeSectionStudents("A", participant.SectionSizeLimit)
	err := f.svc.ValidateSectionsAndTeams(context.Background(), incoming, "CS101")
	assert.NoError(t, err)
}

func TestValidateSectionsAndTeams_SectionOverLimit(t *testing.T) {
	f := newFixture(nil)

	incoming := makeSectionStudents("A", participant.SectionSizeLimit+1)
	err := f.svc.ValidateSectionsAndTeams(context.Background(), incoming, "CS101")

	var enrollErr *participant.EnrollmentError
	require.ErrorAs(t, err, &enrollErr)
	assert.Equal(t,
		`You are trying enroll more than 100 students in section "A". `+
			`To avoid performance problems, please do not enroll more than 100 students in a single section.`,
		enrollErr.Message)
}

func TestValidateSectionsAndTeams_MergesExistingRoster(t *testing.T) {
	f := newFixture(nil)

	existing := makeSectionStudents("A", participant.SectionSizeLimit)
	for i := range existing {
		f.repo.students = append(f.repo.students, &existing[i])
	}

	one := participant.Student{
		CourseID:    "CS101",
		Name:        "New Comer",
		Email:       "newcomer@example.com",
		SectionName: "A",
		TeamName:    "A-team-0",
	}
	err := f.svc.ValidateSectionsAndTeams(context.Background(), []participant.Student{one}, "CS101")

	var enrollErr *participant.EnrollmentError
	require.ErrorAs(t, err, &enrollErr)
	assert.Contains(t, enrollErr.Message, `more than 100 students in section "A"`)
}

func TestValidateSectionsAndTeams_IncomingReplacesExistingByEmail(t *testing.T) {
	f := newFixture(nil)

	existing := makeSectionStudents("A", participant.SectionSizeLimit)
	for i := range existing {
		f.repo.students = append(f.repo.students, &existing[i])
	}

	// Re-enrolling a current member, matched case-insensitively, does not
	// grow the section.
	moved := existing[0]
	moved.Email = "A.000@EXAMPLE.COM"
	err := f.svc.ValidateSectionsAndTeams(context.Background(), []participant.Student{moved}, "CS101")
	assert.NoError(t, err)
}

func TestValidateSectionsAndTeams_TeamAcrossSections(t *testing.T) {
	f := newFixture(nil)

	incoming := []participant.Student{
		{CourseID: "CS101", Name: "Alice", Email: "alice@example.com", SectionName: "A", TeamName: "T1"},
		{CourseID: "CS101", Name: "Bob", Email: "bob@example.com", SectionName: "B", TeamName: "T1"},
	}
	err := f.svc.ValidateSectionsAndTeams(context.Background(), incoming, "CS101")

	var enrollErr *participant.EnrollmentError
	require.ErrorAs(t, err, &enrollErr)
	assert.Equal(t,
		`Team "T1" is detected in both Section "A" and Section "B". `+
			`Please use different team names in different sections.`,
		enrollErr.Message)
}

func TestValidateSectionsAndTeams_TeamReportedOnce(t *testing.T) {
	f := newFixture(nil)

	incoming := []participant.Student{
		{CourseID: "CS101", Name: "Alice", Email: "alice@example.com", SectionName: "A", TeamName: "T1"},
		{CourseID: "CS101", Name: "Bob", Email: "bob@example.com", SectionName: "B", TeamName: "T1"},
		{CourseID: "CS101", Name: "Carol", Email: "carol@example.com", SectionName: "C", TeamName: "T1"},
	}
	err := f.svc.ValidateSectionsAndTeams(context.Background(), incoming, "CS101")

	var enrollErr *participant.EnrollmentError
	require.ErrorAs(t, err, &enrollErr)
	assert.Equal(t, 1, strings.Count(enrollErr.Message, `Team "T1" is detected`))
}

func TestValidateSectionsAndTeams_CombinedMessage(t *testing.T) {
	f := newFixture(nil)

	incoming := makeSectionStudents("A", participant.SectionSizeLimit+1)
	incoming = append(incoming,
		participant.Student{CourseID: "CS101", Name: "Bob", Email: "bob@example.com", SectionName: "B", TeamName: "TX"},
		participant.Student{CourseID: "CS101", Name: "Carol", Email: "carol@example.com", SectionName: "C", TeamName: "TX"})

	err := f.svc.ValidateSectionsAndTeams(context.Background(), incoming, "CS101")

	var enrollErr *participant.EnrollmentError
	require.ErrorAs(t, err, &enrollErr)
	assert.Equal(t,
		`You are trying enroll more than 100 students in section "A". `+
			`To avoid performance problems, please do not enroll more than 100 students in a single section.`+
			`Team "TX" is detected in both Section "B" and Section "C". `+
			`Please use different team names in different sections.`,
		enrollErr.Message)
}

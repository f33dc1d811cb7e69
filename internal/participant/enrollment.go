package participant

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// SectionSizeLimit is the maximum number of students a section may hold.
const SectionSizeLimit = 100

// Conflict message formats. These strings are shown to users verbatim.
const (
	msgSectionOverLimit              = "You are trying enroll more than %d students in section \"%s\"."
	msgSectionOverLimitInstruction   = "To avoid performance problems, please do not enroll more than %d students in a single section."
	msgTeamAcrossSections            = "Team \"%s\" is detected in both Section \"%s\" and Section \"%s\"."
	msgTeamAcrossSectionsInstruction = "Please use different team names in different sections."
)

// ValidateSectionsAndTeams checks a proposed enrollment batch against the
// course's existing roster for section-size and team-name violations. The
// merged roster is the incoming list plus every existing student not already
// present in it by case-insensitive email match; incoming entries take
// precedence. The check is purely advisory and performs no writes.
func (s *Service) ValidateSectionsAndTeams(ctx context.Context, incoming []Student, courseID string) error {
	merged, err := s.mergedRoster(ctx, incoming, courseID)
	if err != nil {
		return err
	}

	if len(merged) < 2 {
		// A conflict needs at least two entries to compare.
		return nil
	}

	message := sectionInvalidityInfo(merged) + teamInvalidityInfo(merged)
	if message != "" {
		return &EnrollmentError{Message: message}
	}
	return nil
}

func (s *Service) mergedRoster(ctx context.Context, incoming []Student, courseID string) ([]Student, error) {
	merged := make([]Student, 0, len(incoming))
	merged = append(merged, incoming...)

	existing, err := s.repo.GetStudentsForCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("loading course roster: %w", err)
	}

	for _, student := range existing {
		if !containsEmail(merged, student.Email) {
			merged = append(merged, student)
		}
	}
	return merged, nil
}

func containsEmail(students []Student, email string) bool {
	for _, s := range students {
		if strings.EqualFold(s.Email, email) {
			return true
		}
	}
	return false
}

// sectionInvalidityInfo reports every section whose merged size exceeds the
// limit. The roster is sorted by section, team then student name, and
// scanned once counting runs of equal section names; runs are checked at
// each section boundary and again at the final element.
func sectionInvalidityInfo(merged []Student) string {
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].SectionName != merged[j].SectionName {
			return merged[i].SectionName < merged[j].SectionName
		}
		if merged[i].TeamName != merged[j].TeamName {
			return merged[i].TeamName < merged[j].TeamName
		}
		return merged[i].Name < merged[j].Name
	})

	var invalidSections []string
	count := 1
	for i := 1; i < len(merged); i++ {
		if merged[i].SectionName == merged[i-1].SectionName {
			count++
		} else {
			if count > SectionSizeLimit {
				invalidSections = append(invalidSections, merged[i-1].SectionName)
			}
			count = 1
		}

		if i == len(merged)-1 && count > SectionSizeLimit {
			invalidSections = append(invalidSections, merged[i].SectionName)
		}
	}

	var parts []string
	for _, section := range invalidSections {
		parts = append(parts, fmt.Sprintf(msgSectionOverLimit, SectionSizeLimit, section))
	}
	if len(invalidSections) > 0 {
		parts = append(parts, fmt.Sprintf(msgSectionOverLimitInstruction, SectionSizeLimit))
	}
	return strings.Join(parts, " ")
}

// teamInvalidityInfo reports every team name that appears in two different
// sections, once per team regardless of how many sections collide. The
// roster is re-sorted by team then student name and adjacent pairs are
// compared.
func teamInvalidityInfo(merged []Student) string {
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].TeamName != merged[j].TeamName {
			return merged[i].TeamName < merged[j].TeamName
		}
		return merged[i].Name < merged[j].Name
	})

	var parts []string
	reported := make(map[string]bool)
	anyInvalid := false
	for i := 1; i < len(merged); i++ {
		current, previous := merged[i], merged[i-1]
		if current.TeamName == previous.TeamName &&
			current.SectionName != previous.SectionName &&
			!reported[current.TeamName] {

			parts = append(parts, fmt.Sprintf(msgTeamAcrossSections,
				current.TeamName, previous.SectionName, current.SectionName))
			reported[current.TeamName] = true
			anyInvalid = true
		}
	}

	if anyInvalid {
		parts = append(parts, msgTeamAcrossSectionsInstruction)
	}
	return strings.Join(parts, " ")
}

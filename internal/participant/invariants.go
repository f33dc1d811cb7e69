package participant

import (
	"context"
	"fmt"
)

// verifyAtLeastOneInstructorDisplayed rejects an edit that would leave the
// course with no instructor visible to students. The edited instructor is
// accounted for specially: when it is the only displayed instructor today
// and the edit hides it, the resulting displayed set is treated as empty
// even though the query ran pre-edit.
func (s *Service) verifyAtLeastOneInstructorDisplayed(ctx context.Context, courseID string,
	wasDisplayed, willBeDisplayed bool) error {
	displayed, err := s.repo.GetInstructorsDisplayedToStudents(ctx, courseID)
	if err != nil {
		return fmt.Errorf("loading displayed instructors: %w", err)
	}

	hiddenByEdit := wasDisplayed && !willBeDisplayed
	noneVisible := len(displayed) == 0 && !willBeDisplayed

	if noneVisible || len(displayed) == 1 && hiddenByEdit {
		return fmt.Errorf("%w: at least one instructor must be displayed to students",
			ErrInstructorUpdateFailed)
	}
	return nil
}

// RepairInstructorPrivileges returns the privilege set the edited instructor
// must carry so the course keeps at least one registered instructor able to
// modify instructors. When the edited instructor is (or replaces) the lone
// holder of that privilege, the returned set has it granted; the input is
// never mutated.
func RepairInstructorPrivileges(edit *Instructor, roster []Instructor) Privileges {
	holders := 0
	var lastHolder *Instructor
	for i := range roster {
		if roster[i].Privileges.Can(CanModifyInstructor) {
			holders++
			lastHolder = &roster[i]
		}
	}

	adjusted := edit.Privileges.Clone()
	if adjusted == nil {
		adjusted = Privileges{}
	}

	lastHolderAtRisk := holders <= 1 && lastHolder != nil &&
		(!lastHolder.IsRegistered() || lastHolder.ID == edit.ID)
	if lastHolderAtRisk {
		adjusted.Grant(CanModifyInstructor)
	}
	return adjusted
}

// ensureModifyInstructorPrivilege loads the course roster and applies the
// privilege repair to the in-flight edit before it is validated. Granting
// here rather than rejecting keeps the invariant recoverable through normal
// edits.
func (s *Service) ensureModifyInstructorPrivilege(ctx context.Context, courseID string, edit *Instructor) error {
	roster, err := s.repo.GetInstructorsForCourse(ctx, courseID)
	if err != nil {
		return fmt.Errorf("loading course instructors: %w", err)
	}
	edit.Privileges = RepairInstructorPrivileges(edit, roster)
	return nil
}

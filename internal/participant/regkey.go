package participant

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// maxKeyRegenerationTries bounds the number of independent draws attempted
// before a regeneration is declared failed.
const maxKeyRegenerationTries = 10

// regKeyPrefixLen is the number of leading raw-key characters stored in
// clear for candidate lookup.
const regKeyPrefixLen = 8

// generateRegistrationKey draws a new raw registration key:
// 24 random bytes -> base64url -> prepend "reg_".
func generateRegistrationKey() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating random bytes: %w", err)
	}
	return "reg_" + base64.RawURLEncoding.EncodeToString(b), nil
}

// issueRegistrationKey draws a fresh key and stores its prefix and bcrypt
// hash through the given pointers. The raw key is returned once.
func (s *Service) issueRegistrationKey(prefix, hash *string) (string, error) {
	rawKey, err := s.newKey()
	if err != nil {
		return "", err
	}
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(rawKey), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing registration key: %w", err)
	}
	*prefix = rawKey[:regKeyPrefixLen]
	*hash = string(hashBytes)
	return rawKey, nil
}

// regenerateKey replaces the stored key material with a draw that differs
// from the current key. Only self-distinctness is guarded; collision with
// any other participant's key is out of scope. Returns the raw key, or
// failErr when the retry budget is exhausted without producing a new key.
func (s *Service) regenerateKey(prefix, hash *string, failErr error) (string, error) {
	oldHash := *hash
	for tries := 0; tries < maxKeyRegenerationTries; tries++ {
		rawKey, err := s.newKey()
		if err != nil {
			return "", err
		}
		if oldHash != "" && bcrypt.CompareHashAndPassword([]byte(oldHash), []byte(rawKey)) == nil {
			// Same key drawn again.
			continue
		}
		hashBytes, err := bcrypt.GenerateFromPassword([]byte(rawKey), s.bcryptCost)
		if err != nil {
			return "", fmt.Errorf("hashing registration key: %w", err)
		}
		*prefix = rawKey[:regKeyPrefixLen]
		*hash = string(hashBytes)
		return rawKey, nil
	}
	return "", fmt.Errorf("%w: could not regenerate a new course registration key", failErr)
}

// RegenerateInstructorKey replaces the instructor's registration key and
// persists the new key material. The raw key is returned once.
func (s *Service) RegenerateInstructorKey(ctx context.Context, courseID, email string) (*Instructor, string, error) {
	instructor, err := s.repo.GetInstructorByEmail(ctx, courseID, email)
	if err != nil {
		return nil, "", err
	}

	rawKey, err := s.regenerateKey(&instructor.RegKeyPrefix, &instructor.RegKeyHash, ErrInstructorUpdateFailed)
	if err != nil {
		return nil, "", err
	}
	if err := s.repo.UpdateInstructor(ctx, instructor); err != nil {
		return nil, "", err
	}
	return instructor, rawKey, nil
}

// RegenerateStudentKey replaces the student's registration key and persists
// the new key material. The raw key is returned once.
func (s *Service) RegenerateStudentKey(ctx context.Context, courseID, email string) (*Student, string, error) {
	student, err := s.repo.GetStudentByEmail(ctx, courseID, email)
	if err != nil {
		return nil, "", err
	}

	rawKey, err := s.regenerateKey(&student.RegKeyPrefix, &student.RegKeyHash, ErrStudentUpdateFailed)
	if err != nil {
		return nil, "", err
	}
	if err := s.repo.UpdateStudent(ctx, student); err != nil {
		return nil, "", err
	}
	return student, rawKey, nil
}

// ResolveInstructorKey resolves a raw registration key to the instructor it
// was issued to. Candidates are narrowed by key prefix and confirmed by
// bcrypt comparison.
func (s *Service) ResolveInstructorKey(ctx context.Context, rawKey string) (*Instructor, error) {
	if len(rawKey) < regKeyPrefixLen {
		return nil, ErrInvalidRegistrationKey
	}

	candidates, err := s.repo.FindInstructorsByKeyPrefix(ctx, rawKey[:regKeyPrefixLen])
	if err != nil {
		return nil, fmt.Errorf("finding instructors by key prefix: %w", err)
	}
	for i := range candidates {
		if bcrypt.CompareHashAndPassword([]byte(candidates[i].RegKeyHash), []byte(rawKey)) == nil {
			return &candidates[i], nil
		}
	}
	return nil, ErrInvalidRegistrationKey
}

// ResolveStudentKey resolves a raw registration key to the student it was
// issued to.
func (s *Service) ResolveStudentKey(ctx context.Context, rawKey string) (*Student, error) {
	if len(rawKey) < regKeyPrefixLen {
		return nil, ErrInvalidRegistrationKey
	}

	candidates, err := s.repo.FindStudentsByKeyPrefix(ctx, rawKey[:regKeyPrefixLen])
	if err != nil {
		return nil, fmt.Errorf("finding students by key prefix: %w", err)
	}
	for i := range candidates {
		if bcrypt.CompareHashAndPassword([]byte(candidates[i].RegKeyHash), []byte(rawKey)) == nil {
			return &candidates[i], nil
		}
	}
	return nil, ErrInvalidRegistrationKey
}

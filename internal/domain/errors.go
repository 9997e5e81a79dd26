package domain

import "errors"

// ErrDuplicate is returned by repositories when a retrospective already
// exists for the same user and session label
var ErrDuplicate = errors.New("retrospective already exists for this session")

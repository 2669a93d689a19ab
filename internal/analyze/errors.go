// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import "errors"

// ErrExtractionFailed reports that no window of the document yielded a usable
// record, so there is nothing to merge or publish.
var ErrExtractionFailed = errors.New("extraction produced no usable records")

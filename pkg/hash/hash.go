package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/Skyebold/SponsorBlockServer/internal/model"
)

// Iteration count for user ID and IP hashing. High enough that the stored
// hashes cannot be cheaply reversed by brute force against known inputs.
const HashIterations = 5000

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// IteratedSHA256 applies SHA256 iteratively n times to produce a derived hash.
func IteratedSHA256(input string, iterations int) string {
	data := []byte(input)
	for range iterations {
		h := sha256.Sum256(data)
		data = h[:]
	}
	return hex.EncodeToString(data)
}

// VideoHash returns the full SHA256 of a video ID, stored alongside each
// segment to support prefix lookups.
func VideoHash(videoID model.VideoID) model.VideoIDHash {
	return model.VideoIDHash(SHA256Hex(string(videoID)))
}

// VideoHashPrefix returns the first prefixLen characters of SHA256(videoID).
// Clients query by a short prefix (k-anonymity) so the server never learns
// exactly which video they are watching.
func VideoHashPrefix(videoID model.VideoID, prefixLen int) string {
	full := string(VideoHash(videoID))
	if prefixLen > len(full) {
		return full
	}
	return full[:prefixLen]
}

// HashUserID derives the public user ID from a private one.
func HashUserID(privateID string) model.UserID {
	return model.UserID(IteratedSHA256(privateID, HashIterations))
}

// HashIP hashes an IP address with the global salt. The result is the only
// submitter network identity ever persisted.
func HashIP(ip, salt string) model.HashedIP {
	return model.HashedIP(IteratedSHA256(salt+ip, HashIterations))
}

// SubmissionID derives the stable identifier of a description segment from
// its semantic content. Identical content from the same submitter on the same
// video and service always collides to the same identifier, which doubles as
// the storage primary key and the duplicate-detection key. The leading "5"
// versions the scheme.
func SubmissionID(videoID model.VideoID, userID model.UserID, service model.Service, seg model.IncomingSegment) model.SegmentUUID {
	input := fmt.Sprintf("%s%s%s%s%s%s%d%g",
		videoID, userID, service, seg.Category,
		seg.DescriptionHash, seg.FirstCharacters+seg.LastCharacters, seg.Length, seg.Offset)
	return model.SegmentUUID("5" + SHA256Hex(input))
}

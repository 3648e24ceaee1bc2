package hls

/*
	https://datatracker.ietf.org/doc/html/rfc8216

	NOTES

	The RFC does not require most tags to appear in a specific position. This
	writer still emits them in one fixed order (see tagOrder) so that the same
	manifest always produces the same bytes:

	EXTM3U, EXT-X-VERSION, EXT-X-MEDIA..., EXT-X-STREAM-INF..., EXT-X-TARGETDURATION,
	EXT-X-MEDIA-SEQUENCE, EXT-X-PLAYLIST-TYPE, EXT-X-DISCONTINUITY-SEQUENCE,
	EXT-X-ALLOW-CACHE, segments, EXT-X-ENDLIST

	Inside a segment block the order is EXT-X-DISCONTINUITY, EXTINF,
	EXT-X-PROGRAM-DATE-TIME, EXT-X-BYTERANGE, URI. Only the URI position is
	mandated; the rest is fixed for reproducibility.

	The order of variant streams is kept. Players read it as a preference
	list.

	EXTINF durations are copied as text. A float duration needs version 3,
	an integer one does not, so reformatting would change the version a
	playlist requires.
*/

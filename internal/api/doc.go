// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

/*
Package api provides the HTTP layer of Captionmap.

Key Components:

  - Router: chi route configuration and the middleware stack
  - Handler: request handlers for captions, bookmarks, search and health
  - ResponseWriter: JSON responses, both enveloped and raw
  - EdgeConfig: CORS (go-chi/cors) plus per-IP budgets (go-chi/httprate), a general one
    and a tighter one for caption submissions

Response Shapes:

Caption and bookmark endpoints return their payload as the whole body, so a
keyphrase map is a plain JSON object from keyphrase to window start times.
Their failures are reported as {"ERROR": "<REASON>"} where REASON is the
storage reason code, for example NO_VIDEO_EXISTS. Unknown videos read as {}.

Search, health and request validation failures use the APIResponse envelope:

	{
	  "success": false,
	  "error": {"code": "VALIDATION_FAILED", "message": "url is required"},
	  "meta": {"timestamp": "...", "request_id": "..."}
	}

Routes:

	POST   /api/v1/captions                                 index captions
	GET    /api/v1/captions/{videoID}                       keyphrase map
	GET    /api/v1/captions/{videoID}/full                  full captions
	GET    /api/v1/captions/{videoID}/metadata              indexing metadata
	PUT    /api/v1/captions/{videoID}/metadata?mode=        overwrite or append notes
	DELETE /api/v1/captions/{videoID}/metadata              delete metadata
	GET    /api/v1/captions/{videoID}/keyphrases/{keyphrase} window start times
	DELETE /api/v1/captions/{videoID}                       delete a video
	DELETE /api/v1/captions/{videoID}/keyphrases/{keyphrase} delete a keyphrase
	GET    /api/v1/search?q=&limit=                         keyphrase suggestions
	GET    /api/v1/bookmarks?email=&videoId=                list bookmarks
	POST   /api/v1/bookmarks                                add or remove a bookmark
	DELETE /api/v1/bookmarks/{bookmarkID}?email=&videoId=   remove a bookmark
	GET    /health/live, /health/ready, /metrics

The flat paths /caption, /fullcaption and /bookmark are served as aliases and
take the video id from the id query parameter.

Indexing Options:

POST /api/v1/captions accepts {"url": ..., "captions": [...]} either as the
body or in the "json" form field. Query parameters:

  - mock=true: use the comma-splitting mock extractor
  - metadata=true: add "METADATA": [captionCount, durationMillis, entityCount]
  - threshold=N: window size in seconds (1..3600)

Identical submissions are answered from the pipeline result cache. Every
successful index publishes video.indexed; deleting a video publishes
video.deleted.
*/
package api

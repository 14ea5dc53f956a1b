// Package contracts holds recorded provider payloads that the OAuth and
// YouTube clients are tested against. Each contract is the minimal shape of
// a real response; fields the clients do not read are kept so that schema
// drift shows up in the tests.
package contracts

// OAuthTokenContract is a token endpoint response to an authorization-code
// exchange (RFC 6749 section 5.1).
const OAuthTokenContract = `{
	"access_token": "ya29.a0AfH6SMBx...",
	"expires_in": 3599,
	"refresh_token": "1//0e...",
	"scope": "https://www.googleapis.com/auth/youtube.readonly",
	"token_type": "Bearer"
}`

// OAuthRefreshContract is a token endpoint response to a refresh grant.
// Google omits refresh_token on renewal.
const OAuthRefreshContract = `{
	"access_token": "ya29.a0AfH6SMCy...",
	"expires_in": 3599,
	"scope": "https://www.googleapis.com/auth/youtube.readonly",
	"token_type": "Bearer"
}`

// OAuthErrorContract is a token endpoint rejection (RFC 6749 section 5.2).
const OAuthErrorContract = `{
	"error": "invalid_grant",
	"error_description": "Token has been expired or revoked."
}`

// YouTubeSearchContract is a search.list response with one video and one
// channel result.
const YouTubeSearchContract = `{
	"kind": "youtube#searchListResponse",
	"etag": "q1w2e3",
	"regionCode": "US",
	"pageInfo": {"totalResults": 2, "resultsPerPage": 2},
	"items": [
		{
			"kind": "youtube#searchResult",
			"etag": "a1",
			"id": {"kind": "youtube#video", "videoId": "dQw4w9WgXcQ"},
			"snippet": {
				"publishedAt": "2009-10-25T06:57:33Z",
				"channelId": "UCuAXFkgsw1L7xaCfnd5JJOw",
				"title": "Never Gonna Give You Up",
				"description": "The official video",
				"channelTitle": "Rick Astley",
				"liveBroadcastContent": "none"
			}
		},
		{
			"kind": "youtube#searchResult",
			"etag": "a2",
			"id": {"kind": "youtube#channel", "channelId": "UCuAXFkgsw1L7xaCfnd5JJOw"},
			"snippet": {"channelId": "UCuAXFkgsw1L7xaCfnd5JJOw", "title": "Rick Astley", "channelTitle": "Rick Astley"}
		}
	]
}`

// YouTubeVideoListContract is a videos.list response, as returned for both
// myRating=like and an id lookup.
const YouTubeVideoListContract = `{
	"kind": "youtube#videoListResponse",
	"etag": "z9x8",
	"pageInfo": {"totalResults": 1, "resultsPerPage": 1},
	"items": [
		{
			"kind": "youtube#video",
			"etag": "v1",
			"id": "jNQXAC9IVRw",
			"snippet": {
				"publishedAt": "2005-04-24T03:31:52Z",
				"channelId": "UC4QobU6STFB0P71PMvOGN5A",
				"title": "Me at the zoo",
				"description": "The first video on YouTube.",
				"channelTitle": "jawed",
				"categoryId": "1"
			}
		}
	]
}`

// YouTubeCommentThreadContract is a commentThreads.insert response.
const YouTubeCommentThreadContract = `{
	"kind": "youtube#commentThread",
	"etag": "c1",
	"id": "UgzDE2tasfmrYLyNkGt4AaABAg",
	"snippet": {
		"videoId": "jNQXAC9IVRw",
		"topLevelComment": {
			"kind": "youtube#comment",
			"id": "UgzDE2tasfmrYLyNkGt4AaABAg",
			"snippet": {"videoId": "jNQXAC9IVRw", "textOriginal": "Great video", "textDisplay": "Great video"}
		},
		"canReply": true,
		"totalReplyCount": 0,
		"isPublic": true
	}
}`

// YouTubeSubscriptionContract is a subscriptions.insert response.
const YouTubeSubscriptionContract = `{
	"kind": "youtube#subscription",
	"etag": "s1",
	"id": "yJfUvS1cZbQ",
	"snippet": {
		"publishedAt": "2024-01-15T10:00:00Z",
		"title": "jawed",
		"description": "",
		"resourceId": {"kind": "youtube#channel", "channelId": "UC4QobU6STFB0P71PMvOGN5A"},
		"channelId": "UCmy0wnCh4nn3l"
	}
}`

// YouTubeErrorContract is the error envelope the Data API returns, here for
// an exhausted quota.
const YouTubeErrorContract = `{
	"error": {
		"code": 403,
		"message": "The request cannot be completed because you have exceeded your quota.",
		"errors": [
			{"message": "The request cannot be completed because you have exceeded your quota.", "domain": "youtube.quota", "reason": "quotaExceeded"}
		]
	}
}`

package api

import (
	"net/url"
	"strconv"
)

type PostType string

const (
	PostTypePost    PostType = "POST"
	PostTypeProduct PostType = "PRODUCT"
)

type FileType string

const (
	FileTypeProfile FileType = "PROFILE"
	FileTypePost    FileType = "POST"
)

type SourceType string

const (
	SourceUser    SourceType = "USER"
	SourcePost    SourceType = "POST"
	SourceProduct SourceType = "PRODUCT"
)

// CursorParams pages through lists ordered by creation time.
type CursorParams struct {
	LastCreateAt string
	LastID       string
	Limit        int
}

func (p CursorParams) values() url.Values {
	q := url.Values{}
	q.Set("lastCreateAt", p.LastCreateAt)
	q.Set("lastId", p.LastID)
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	return q
}

type CursorPage[T any] struct {
	Content      []T    `json:"content"`
	HasNext      bool   `json:"hasNext"`
	LastCreateAt string `json:"lastCreateAt,omitempty"`
	LastID       string `json:"lastId,omitempty"`
}

// Auth

type SignUpRequest struct {
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	UserID   string `json:"userId"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type LoginRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

type FindIDRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type PasswordChangeRequest struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type DuplicateCheck struct {
	Available bool `json:"available"`
}

// Posts

type PostRequest struct {
	Title     string   `json:"title"`
	Type      PostType `json:"type"`
	Contents  string   `json:"contents"`
	Thumbnail string   `json:"thumbnail,omitempty"`
	Place     string   `json:"place,omitempty"`
	TagNames  []string `json:"tagNames"`
	Price     int64    `json:"price"`
}

type Post struct {
	PostID          string   `json:"postId"`
	UserID          string   `json:"userId"`
	Nickname        string   `json:"nickname"`
	ProfileThumbURL string   `json:"profileThumbURL,omitempty"`
	Title           string   `json:"title"`
	Type            PostType `json:"type"`
	Contents        string   `json:"contents"`
	Thumbnail       string   `json:"thumbnail,omitempty"`
	Place           string   `json:"place,omitempty"`
	TagNames        []string `json:"tagNames,omitempty"`
	Price           int64    `json:"price"`
	LikeCount       int64    `json:"likeCount"`
	DislikeCount    int64    `json:"dislikeCount"`
	CommentCount    int64    `json:"commentCount"`
	CreatedAt       string   `json:"createdAt"`
}

type PostListParams struct {
	Type PostType
	CursorParams
}

func (p PostListParams) values() url.Values {
	q := p.CursorParams.values()
	q.Set("type", string(p.Type))
	return q
}

type LikeToggle struct {
	Liked        bool  `json:"liked"`
	Disliked     bool  `json:"disliked"`
	LikeCount    int64 `json:"likeCount"`
	DislikeCount int64 `json:"dislikeCount"`
}

// Comments and reviews

type CommentRequest struct {
	Content string `json:"content"`
}

type Comment struct {
	CommentID string `json:"commentId"`
	PostID    string `json:"postId"`
	GroupID   string `json:"groupId,omitempty"`
	ParentID  string `json:"parentId,omitempty"`
	UserID    string `json:"userId"`
	Nickname  string `json:"nickname"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

type CommentListParams struct {
	LastGroupID string
	CursorParams
}

func (p CommentListParams) values() url.Values {
	q := p.CursorParams.values()
	q.Set("lastGroupId", p.LastGroupID)
	return q
}

type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Content string `json:"content"`
}

type Review struct {
	ReviewID  string `json:"reviewId"`
	PostID    string `json:"postId"`
	UserID    string `json:"userId"`
	Nickname  string `json:"nickname"`
	Rating    int    `json:"rating"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

// Profiles and relations

type MyProfile struct {
	ProfileThumbURL string `json:"profileThumbURL"`
	ProfileURL      string `json:"profileURL"`
	UserID          string `json:"userId"`
	UserName        string `json:"userName"`
	Nickname        string `json:"nickname"`
	Gender          string `json:"gender"`
	ProfileMessage  string `json:"profileMessage"`
	BirthDay        string `json:"birthDay"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber"`
	UserAddress     string `json:"userAddress"`
}

type UserProfile struct {
	UserID          string           `json:"userId"`
	Nickname        string           `json:"nickname"`
	ProfileThumbURL string           `json:"profileThumbURL"`
	ProfileURL      string           `json:"profileURL"`
	ProfileMessage  string           `json:"profileMessage"`
	FollowerCount   int64            `json:"followerCount"`
	FollowingCount  int64            `json:"followingCount"`
	Following       bool             `json:"following"`
	Posts           CursorPage[Post] `json:"posts"`
}

type UserBasic struct {
	UserID          string `json:"userId"`
	Nickname        string `json:"nickname"`
	ProfileThumbURL string `json:"profileThumbURL,omitempty"`
}

type OtherUserRequest struct {
	OtherID string `json:"otherId"`
}

// Files

type File struct {
	Name string
	Data []byte
}

type FileUpload struct {
	FileHash   string   `json:"fileHash,omitempty"`
	FileURL    string   `json:"fileUrl,omitempty"`
	FileHashes []string `json:"fileHashes,omitempty"`
	FileURLs   []string `json:"fileUrls,omitempty"`
}

// Search

type SearchRequest struct {
	Keyword           string
	TargetType        SourceType
	SearchOnlyFriends *bool
	SortBy            string
	Page              *int
	Size              *int
}

func (r SearchRequest) values() url.Values {
	q := url.Values{}
	q.Set("keyword", r.Keyword)
	q.Set("targetType", string(r.TargetType))
	if r.SearchOnlyFriends != nil {
		q.Set("searchOnlyFriends", strconv.FormatBool(*r.SearchOnlyFriends))
	}
	q.Set("sortBy", r.SortBy)
	if r.Page != nil {
		q.Set("page", strconv.Itoa(*r.Page))
	}
	if r.Size != nil {
		q.Set("size", strconv.Itoa(*r.Size))
	}
	return q
}

type SearchIndex struct {
	SourceType      SourceType `json:"sourceType"`
	SourceID        string     `json:"sourceId"`
	UserID          string     `json:"userId,omitempty"`
	Nickname        string     `json:"nickname,omitempty"`
	ProfileThumbURL string     `json:"profileThumbURL,omitempty"`
	Title           string     `json:"title,omitempty"`
	Contents        string     `json:"contents,omitempty"`
	Thumbnail       string     `json:"thumbnail,omitempty"`
	Price           int64      `json:"price,omitempty"`
}

type SearchPage struct {
	Content          []SearchIndex `json:"content"`
	TotalElements    int64         `json:"totalElements"`
	TotalPages       int           `json:"totalPages"`
	Number           int           `json:"number"`
	Size             int           `json:"size"`
	NumberOfElements int           `json:"numberOfElements"`
	First            bool          `json:"first"`
	Last             bool          `json:"last"`
}

type GroupedResults struct {
	Users    []SearchIndex
	Posts    []SearchIndex
	Products []SearchIndex
}

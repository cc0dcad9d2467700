package prefs

import "github.com/justestif/go-muji/internal/mood"

// Preference keys.
const (
	KeyProfileName   = "profile_name"
	KeyProfileBio    = "profile_bio"
	KeyProfileAge    = "profile_age"
	KeyProfileGenres = "profile_genres"
	KeyEmotionStats  = "emotion_stats"
	KeyActivityItems = "activity_items"
	KeyPlaylistSongs = "playlist_songs"
)

// MaxActivityItems caps the activity feed.
const MaxActivityItems = 20

// Song is one playlist entry.
type Song struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Artist  string `json:"artist"`
	Emotion string `json:"emotion"`
}

// ActivityItem is one entry of the recent-activity feed.
type ActivityItem struct {
	Icon string `json:"icon"`
	Text string `json:"text"`
	Time string `json:"time"`
}

// ProfileDisplay holds the profile fields shown before the user edits them.
type ProfileDisplay struct {
	Name   string   `json:"name"`
	Bio    string   `json:"bio"`
	Age    string   `json:"age"`
	Genres []string `json:"genres"`
}

// DefaultProfileDisplay is used until the user saves their own values.
func DefaultProfileDisplay() ProfileDisplay {
	return ProfileDisplay{
		Name:   "이름",
		Bio:    "메시지를 입력해주세요",
		Age:    "나이",
		Genres: []string{"팝"},
	}
}

// SampleEmotionStats is shown before any emotion has been recorded.
func SampleEmotionStats() []mood.Stat {
	return []mood.Stat{
		{Emoji: "😊", Label: "행복", Percentage: 45, PrimaryColor: "255,210,210", SecondaryColor: "255,176,176"},
		{Emoji: "😔", Label: "슬픔", Percentage: 25, PrimaryColor: "210,227,255", SecondaryColor: "176,201,255"},
		{Emoji: "😠", Label: "화남", Percentage: 15, PrimaryColor: "255,225,210", SecondaryColor: "255,204,176"},
		{Emoji: "😌", Label: "평온", Percentage: 15, PrimaryColor: "210,255,227", SecondaryColor: "176,255,212"},
	}
}

// SampleActivityItems seeds the activity feed.
func SampleActivityItems() []ActivityItem {
	return []ActivityItem{
		{Icon: "music.note", Text: "새로운 플레이리스트 '차분한 아침' 생성", Time: "2시간 전"},
		{Icon: "heart.fill", Text: "'에잇' 노래를 좋아요 표시했습니다", Time: "어제"},
		{Icon: "person.2.fill", Text: "친구 5명이 당신의 플레이리스트를 구독했습니다", Time: "3일 전"},
	}
}

// SampleSongs seeds the playlist.
func SampleSongs() []Song {
	return []Song{
		{ID: "1", Title: "봄날", Artist: "BTS", Emotion: "행복"},
		{ID: "2", Title: "눈의 꽃", Artist: "박효신", Emotion: "평온"},
		{ID: "3", Title: "FAKE LOVE", Artist: "BTS", Emotion: "슬픔"},
		{ID: "4", Title: "좋은 날", Artist: "아이유", Emotion: "행복"},
		{ID: "5", Title: "에잇", Artist: "아이유", Emotion: "슬픔"},
	}
}

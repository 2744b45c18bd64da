package config

// Built-in vocabulary. User entries loaded from a document or added at runtime
// are tried before these, so they can override ambiguous defaults.
var (
	defaultVideoExtensions = []string{".mp4", ".mkv", ".avi", ".mov", ".wmv", ".flv", ".webm"}

	defaultReleaseGroups = []string{
		"LoliHouse", "Sakurato", "Nekomoe kissaten", "ANi", "NC-Raws",
		"Leopard-Raws", "VCB-Studio", "SweetSub", "Lilith-Raws",
		"GM-Team", "MCE", "KTXP", "Crimson", "Philosophy-Raws",
		"SubsPlease", "Erai-raws", "Skymoon-Raws", "DBD-Raws",
		"桜都字幕组", "喵萌奶茶屋", "北宇治字幕组", "织梦字幕组",
	}

	// defaultTags is one flat set; the grouping only documents intent.
	defaultTags = []string{
		// source / quality
		"WebRip", "BDRip", "WEB-DL", "1080p", "720p", "480p", "2160p", "4K",
		// codec
		"HEVC", "AVC", "x264", "x265", "10bit", "8bit",
		// audio
		"AAC", "FLAC", "AC3", "DTS",
		// subtitles
		"SRTx2", "ASSx2", "CHS", "CHT", "JP", "ENG", "GB", "BIG5",
	}

	// defaultEpisodePatterns are matched against the filename stem with the
	// leading release group token removed. Order matters: the first pattern
	// that matches wins, so the most specific forms come first.
	defaultEpisodePatterns = []string{
		`\s-\s(\d{1,3})(?:v\d+)?(?:\s|\[|\(|$)`,               // Show - 01, Show - 01v2 [1080p]
		`S\d{1,2}E(\d{1,3})`,                                  // S01E01, s1e1
		`第(\d{1,3})[话話集]`,                                    // 第01话, 第01集
		`\[(\d{1,3})(?:v\d+)?\]`,                              // [01], [01v2]
		`[ \-_\[](\d{1,2})[ \-_\]]`,                           // _01_, [01 , - 01
		`(?:^|[^A-Za-z])EP?\.?(\d{1,3})(?:v\d+)?(?:[^0-9]|$)`, // EP01, E01, ep.01
		`(\d{1,3})[话話集]`,                                     // 01话, 01集
		`\.(\d{1,2})$`,                                        // Show.01
		`_(\d{1,2})_`,                                         // Show_01_
		`\s(\d{1,2})(?:\s|$)`,                                 // Show 01
		`(?:第|Episode|Ep)\s*(\d{1,3})`,                        // 第01, Episode 01
		`^(\d{1,3})(?:v\d+)?$`,                                // 01
	}
)

// DefaultDocument returns the built-in vocabulary in document form. Writing it
// gives users an editable starting point.
func DefaultDocument() Document {
	return Document{
		ReleaseGroups:   cloneStrings(defaultReleaseGroups),
		Tags:            cloneStrings(defaultTags),
		EpisodePatterns: cloneStrings(defaultEpisodePatterns),
		VideoExtensions: cloneStrings(defaultVideoExtensions),
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

package load

// CrewPair is one person taken from the flat crew list, paired with the
// character they played when the source provided one.
type CrewPair struct {
	Name          string
	CharacterName *string
}

// ParseCrewPairs groups the flat alternating name/character sequence into
// pairs. Sources emit "Name, Character, Name, Character, ..."; an odd-length
// list leaves the trailing name without a character, which is preserved as a
// nil CharacterName rather than dropped.
func ParseCrewPairs(flat []string) []CrewPair {
	pairs := make([]CrewPair, 0, (len(flat)+1)/2)
	for i := 0; i < len(flat); i += 2 {
		p := CrewPair{Name: flat[i]}
		if i+1 < len(flat) {
			c := flat[i+1]
			p.CharacterName = &c
		}
		pairs = append(pairs, p)
	}
	return pairs
}

// Role derives the role dimension key for a pair. A character name implies an
// acting credit; without one the source gives no job information, so the role
// stays unknown.
func (p CrewPair) Role() (roleName, roleType string) {
	if p.CharacterName != nil {
		return "Actor", "Character"
	}
	return "Unknown", "Job"
}

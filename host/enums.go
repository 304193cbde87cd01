package host

const (
	TeamFree = iota
	TeamAxis
	TeamAllies
	TeamSpectator
	TeamCount
)

const (
	ClassSoldier = iota
	ClassMedic
	ClassEngineer
	ClassFieldOps
	ClassCovertOps
)

const (
	SkillBattleSense = iota
	SkillExplosivesAndConstruction
	SkillFirstAid
	SkillSignals
	SkillLightWeapons
	SkillHeavyWeapons
	SkillMilitaryIntelligenceAndScopedWeapons
	SkillCount
)

const (
	WeaponNone = iota
	WeaponKnife
	WeaponLuger
	WeaponMP40
	WeaponGrenadeLauncher
	WeaponPanzerfaust
	WeaponFlamethrower
	WeaponColt
	WeaponThompson
	WeaponGrenadePineapple
	WeaponSten
	WeaponMedicSyringe
	WeaponAmmo
	WeaponArty
	WeaponSilencer
	WeaponDynamite
	WeaponSmoketrail
	WeaponMapMortar
	WeaponVeryBigExplosion
	WeaponMedkit
	WeaponBinoculars
	WeaponPliers
	WeaponSmokeMarker
	WeaponKar98
	WeaponCarbine
	WeaponGarand
	WeaponLandmine
	WeaponSatchel
	WeaponSatchelDet
	WeaponTripmine
	WeaponSmokeBomb
	WeaponMobileMG42
	WeaponK43
	WeaponFG42
	WeaponDummyMG42
	WeaponMortar
	WeaponAkimboColt
	WeaponAkimboLuger
	WeaponGPG40
	WeaponM7
	WeaponSilencedColt
	WeaponGarandScope
	WeaponK43Scope
	WeaponFG42Scope
	WeaponMortarSet
	WeaponMedicAdrenaline
	WeaponAkimboSilencedColt
	WeaponAkimboSilencedLuger
	WeaponMobileMG42Set
	WeaponCount
)

// Means of death.
const (
	ModUnknown = iota
	ModMachinegun
	ModBrowning
	ModMG42
	ModGrenade
	ModKnife
	ModLuger
	ModColt
	ModMP40
	ModThompson
	ModSten
	ModGarand
	ModSilencer
	ModFG42
	ModFG42Scope
	ModPanzerfaust
	ModGrenadeLauncher
	ModFlamethrower
	ModGrenadePineapple
	ModMapMortar
	ModMapMortarSplash
	ModKicked
	ModDynamite
	ModAirstrike
	ModSyringe
	ModAmmo
	ModArty
	ModWater
	ModSlime
	ModLava
	ModCrush
	ModTelefrag
	ModFalling
	ModSuicide
	ModTargetLaser
	ModTriggerHurt
	ModExplosive
	ModCarbine
	ModKar98
	ModGPG40
	ModM7
	ModLandmine
	ModSatchel
	ModSmokeBomb
	ModMobileMG42
	ModSilencedColt
	ModGarandScope
	ModCrushConstruction
	ModCrushConstructionDeath
	ModCrushConstructionDeathNoAttacker
	ModK43
	ModK43Scope
	ModMortar
	ModAkimboColt
	ModAkimboLuger
	ModAkimboSilencedColt
	ModAkimboSilencedLuger
	ModSmokeGrenade
	ModSwapPlaces
	ModSwitchTeam
	ModCount
)

const (
	SayAll = iota
	SayTeam
	SayBuddy
	SayTeamNL
)

const (
	ExecNow = iota
	ExecInsert
	ExecAppend
)

const (
	FSRead = iota
	FSWrite
	FSAppend
	FSAppendSync
)

// Configstring indices. Only the ones scripts are known to touch.
const (
	CSServerInfo       = 0
	CSSystemInfo       = 1
	CSMusic            = 2
	CSMessage          = 3
	CSMotd             = 4
	CSWarmup           = 5
	CSVoteTime         = 6
	CSVoteString       = 7
	CSVoteYes          = 8
	CSVoteNo           = 9
	CSGameVersion      = 10
	CSLevelStartTime   = 11
	CSIntermission     = 12
	CSMultiInfo        = 13
	CSMultiMapWinner   = 14
	CSMultiObjective   = 15
	CSScreenFade       = 17
	CSFogVars          = 18
	CSSkyboxOrg        = 19
	CSTargetEffect     = 20
	CSWolfInfo         = 21
	CSFirstBlood       = 22
	CSRoundScores1     = 23
	CSRoundScores2     = 24
	CSMainAxisObj      = 25
	CSMainAlliesObj    = 26
	CSMusicQueue       = 27
	CSScriptMoverNames = 28
	CSConstructionName = 29
	CSVersionInfo      = 30
	CSReinfSeeds       = 31
	CSServerToggles    = 32
	CSGlobalFogVars    = 33
	CSAxisMapsXP       = 34
	CSAlliedMapsXP     = 35
	CSIntermissionTime = 36
	CSEndgameStats     = 37
	CSChargeTimes      = 38
	CSFilterCams       = 39
	CSModels           = 64
	CSSounds           = CSModels + MaxModels
	CSShaders          = CSSounds + MaxSounds
	CSShaderState      = CSShaders + 32
	CSPlayers          = CSShaders + 64
	CSMax              = MaxConfigstrings
)

const (
	PMNormal = iota
	PMNoclip
	PMSpectator
	PMDead
	PMFreeze
	PMIntermission
)

// Entity state flags.
const (
	EFDead           = 0x00000001
	EFNonsolidBmodel = 0x00000002
	EFTeleportBit    = 0x00000004
	EFReady          = 0x00000008
	EFCrouching      = 0x00000010
	EFMG42Active     = 0x00000020
	EFNodraw         = 0x00000040
	EFFiring         = 0x00000080
	EFInheritShader  = 0x00000100
	EFSpinning       = 0x00000200
	EFBreath         = 0x00000400
	EFTalk           = 0x00000800
	EFConnection     = 0x00001000
	EFSmokingBlack   = 0x00002000
	EFHeadshot       = 0x00004000
	EFSmoking        = 0x00008000
	EFOverheating    = 0x00010000
	EFVoted          = 0x00020000
	EFTagConnect     = 0x00040000
	EFMountedTank    = 0x00080000
	EFFakeBmodel     = 0x00100000
	EFPathLink       = 0x00200000
	EFZooming        = 0x00400000
	EFProne          = 0x00800000
	EFProneMoving    = 0x01000000
	EFViewingCamera  = 0x02000000
	EFAAGunActive    = 0x04000000
	EFPlayDead       = 0x08000000
)

// Game entity flags.
const (
	FLGodmode     = 0x00000010
	FLNotarget    = 0x00000020
	FLTeamSlave   = 0x00000400
	FLNoKnockback = 0x00000800
	FLDroppedItem = 0x00001000
	FLNoBots      = 0x00002000
	FLNoHumans    = 0x00004000
)

const (
	PWNone = iota
	PWInvulnerable
	PWFire
	PWElectric
	PWBreather
	PWNoFatigue
	PWRedFlag
	PWBlueFlag
	PWOpsDisguised
	PWOpsClass1
	PWOpsClass2
	PWOpsClass3
	PWAdrenaline
	PWBlackout
	PWCount
)

const (
	PersScore = iota
	PersHits
	PersRank
	PersTeam
	PersSpawnCount
	PersAttacker
	PersKilled
	PersRespawnsLeft
	PersRespawnsPenalty
	PersHWeaponUse
	PersRevivePoints
)

// Sound events.
const (
	EVGeneralSound       = 51
	EVFxSound            = 52
	EVGeneralSoundVolume = 53
	EVGlobalSound        = 54
	EVGlobalClientSound  = 55
	EVGlobalTeamSound    = 56
)

const (
	StatHealth = iota
	StatKeys
	StatDeadYaw
	StatClientsReady
	StatMaxHealth
	StatPlayerClass
	StatCapsules
	StatXP
	StatPS
	StatAntiwarpDelay
)

const (
	ContentsSolid         = 0x00000001
	ContentsLightgrid     = 0x00000004
	ContentsLava          = 0x00000008
	ContentsSlime         = 0x00000010
	ContentsWater         = 0x00000020
	ContentsFog           = 0x00000040
	ContentsMissileClip   = 0x00000080
	ContentsItem          = 0x00000100
	ContentsMover         = 0x00004000
	ContentsAreaPortal    = 0x00008000
	ContentsPlayerClip    = 0x00010000
	ContentsMonsterClip   = 0x00020000
	ContentsTeleporter    = 0x00040000
	ContentsJumpPad       = 0x00080000
	ContentsClusterPortal = 0x00100000
	ContentsDoNotEnter    = 0x00200000
	ContentsBody          = 0x02000000
	ContentsCorpse        = 0x04000000
	ContentsTrigger       = 0x40000000
	ContentsNoDrop        = -0x80000000

	MaskAll         = -1
	MaskSolid       = ContentsSolid
	MaskPlayerSolid = ContentsSolid | ContentsPlayerClip | ContentsBody
	MaskWater       = ContentsWater | ContentsLava | ContentsSlime
	MaskShot        = ContentsSolid | ContentsBody | ContentsCorpse
	MaskMissileShot = MaskShot | ContentsMissileClip
)

const (
	SurfNoDamage = 0x00000001
	SurfSlick    = 0x00000002
	SurfSky      = 0x00000004
	SurfLadder   = 0x00000008
	SurfNoImpact = 0x00000010
	SurfNoMarks  = 0x00000020
	SurfMetal    = 0x00001000
	SurfWood     = 0x00080000
	SurfGrass    = 0x00100000
	SurfGravel   = 0x00200000
	SurfGlass    = 0x00400000
	SurfSnow     = 0x00800000
)

const (
	DamageRadius           = 0x00000001
	DamageHalfKnockback    = 0x00000002
	DamageNoKnockback      = 0x00000008
	DamageNoProtection     = 0x00000020
	DamageNoTeamProtection = 0x00000010
	DamageDistanceFalloff  = 0x00000040
)

// Entity types.
const (
	ETGeneral = iota
	ETPlayer
	ETItem
	ETMissile
	ETMover
	ETBeam
	ETPortal
	ETSpeaker
	ETPushTrigger
	ETTeleportTrigger
	ETInvisible
	ETConcussiveTrigger
	ETOIDTrigger
	ETExplosiveIndicator
	ETExplosive
	ETEFTypes
)

// Server entity flags.
const (
	SVFNoClient            = 0x00000001
	SVFBroadcast           = 0x00000020
	SVFSingleClient        = 0x00000100
	SVFNoServerInfo        = 0x00000200
	SVFCapsule             = 0x00000400
	SVFNotSingleClient     = 0x00000800
	SVFIgnoreBmodelExtents = 0x00004000
)

const (
	GSInitialize = iota - 1
	GSPlaying
	GSWarmupCountdown
	GSWarmup
	GSIntermission
	GSWaitingForPlayers
	GSReset
)

const (
	StateDefault = iota
	StateInvisible
	StateUnderConstruction
)

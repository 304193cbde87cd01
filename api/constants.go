package api

import (
	"github.com/zond/etlua/host"
)

// Constant is an integer published in the et namespace.
type Constant struct {
	Name  string
	Value int
}

func enum(prefix string, names ...string) []Constant {
	result := make([]Constant, len(names))
	for i, name := range names {
		result[i] = Constant{Name: prefix + name, Value: i}
	}
	return result
}

// Constants lists every integer the et namespace carries, grouped as the
// host declares them.
var Constants = concat(
	[]Constant{
		{"EXEC_NOW", host.ExecNow},
		{"EXEC_INSERT", host.ExecInsert},
		{"EXEC_APPEND", host.ExecAppend},

		{"FS_READ", host.FSRead},
		{"FS_WRITE", host.FSWrite},
		{"FS_APPEND", host.FSAppend},
		{"FS_APPEND_SYNC", host.FSAppendSync},

		{"SAY_ALL", host.SayAll},
		{"SAY_TEAM", host.SayTeam},
		{"SAY_BUDDY", host.SayBuddy},
		{"SAY_TEAMNL", host.SayTeamNL},

		{"MAX_CLIENTS", host.MaxClients},
		{"MAX_GENTITIES", host.MaxGEntities},
		{"MAX_STATS", host.MaxStats},
		{"MAX_PERSISTANT", host.MaxPersistant},
		{"MAX_POWERUPS", host.MaxPowerups},
		{"MAX_WEAPONS", host.MaxWeapons},
		{"MAX_MODELS", host.MaxModels},
		{"MAX_SOUNDS", host.MaxSounds},
		{"MAX_STRING_CHARS", host.MaxStringChars},
		{"MAX_INFO_STRING", host.MaxInfoString},
		{"MAX_CVAR_VALUE_STRING", host.MaxCvarValueString},
		{"MAX_QPATH", host.MaxQPath},
		{"MAX_CONFIGSTRINGS", host.MaxConfigstrings},
		{"MAX_NETNAME", host.MaxNetname},
		{"ENTITYNUM_NONE", host.EntityNumNone},
		{"ENTITYNUM_WORLD", host.EntityNumWorld},

		{"TEAM_FREE", host.TeamFree},
		{"TEAM_AXIS", host.TeamAxis},
		{"TEAM_ALLIES", host.TeamAllies},
		{"TEAM_SPECTATOR", host.TeamSpectator},
		{"TEAM_NUM_TEAMS", host.TeamCount},

		{"PC_SOLDIER", host.ClassSoldier},
		{"PC_MEDIC", host.ClassMedic},
		{"PC_ENGINEER", host.ClassEngineer},
		{"PC_FIELDOPS", host.ClassFieldOps},
		{"PC_COVERTOPS", host.ClassCovertOps},

		{"SK_BATTLE_SENSE", host.SkillBattleSense},
		{"SK_EXPLOSIVES_AND_CONSTRUCTION", host.SkillExplosivesAndConstruction},
		{"SK_FIRST_AID", host.SkillFirstAid},
		{"SK_SIGNALS", host.SkillSignals},
		{"SK_LIGHT_WEAPONS", host.SkillLightWeapons},
		{"SK_HEAVY_WEAPONS", host.SkillHeavyWeapons},
		{"SK_MILITARY_INTELLIGENCE_AND_SCOPED_WEAPONS", host.SkillMilitaryIntelligenceAndScopedWeapons},
		{"SK_NUM_SKILLS", host.SkillCount},

		{"PM_NORMAL", host.PMNormal},
		{"PM_NOCLIP", host.PMNoclip},
		{"PM_SPECTATOR", host.PMSpectator},
		{"PM_DEAD", host.PMDead},
		{"PM_FREEZE", host.PMFreeze},
		{"PM_INTERMISSION", host.PMIntermission},

		{"STAT_HEALTH", host.StatHealth},
		{"STAT_KEYS", host.StatKeys},
		{"STAT_DEAD_YAW", host.StatDeadYaw},
		{"STAT_CLIENTS_READY", host.StatClientsReady},
		{"STAT_MAX_HEALTH", host.StatMaxHealth},
		{"STAT_PLAYER_CLASS", host.StatPlayerClass},
		{"STAT_CAPSULE", host.StatCapsules},
		{"STAT_XP", host.StatXP},
		{"STAT_PS_FLAGS", host.StatPS},
		{"STAT_AIRLEFT", host.StatAntiwarpDelay},

		{"EF_DEAD", host.EFDead},
		{"EF_NONSOLID_BMODEL", host.EFNonsolidBmodel},
		{"EF_TELEPORT_BIT", host.EFTeleportBit},
		{"EF_READY", host.EFReady},
		{"EF_CROUCHING", host.EFCrouching},
		{"EF_MG42_ACTIVE", host.EFMG42Active},
		{"EF_NODRAW", host.EFNodraw},
		{"EF_FIRING", host.EFFiring},
		{"EF_INHERITSHADER", host.EFInheritShader},
		{"EF_SPINNING", host.EFSpinning},
		{"EF_BREATH", host.EFBreath},
		{"EF_TALK", host.EFTalk},
		{"EF_CONNECTION", host.EFConnection},
		{"EF_SMOKINGBLACK", host.EFSmokingBlack},
		{"EF_HEADSHOT", host.EFHeadshot},
		{"EF_SMOKING", host.EFSmoking},
		{"EF_OVERHEATING", host.EFOverheating},
		{"EF_VOTED", host.EFVoted},
		{"EF_TAGCONNECT", host.EFTagConnect},
		{"EF_MOUNTEDTANK", host.EFMountedTank},
		{"EF_FAKEBMODEL", host.EFFakeBmodel},
		{"EF_PATH_LINK", host.EFPathLink},
		{"EF_ZOOMING", host.EFZooming},
		{"EF_PRONE", host.EFProne},
		{"EF_PRONE_MOVING", host.EFProneMoving},
		{"EF_VIEWING_CAMERA", host.EFViewingCamera},
		{"EF_AAGUN_ACTIVE", host.EFAAGunActive},
		{"EF_PLAYDEAD", host.EFPlayDead},

		{"FL_GODMODE", host.FLGodmode},
		{"FL_NOTARGET", host.FLNotarget},
		{"FL_TEAMSLAVE", host.FLTeamSlave},
		{"FL_NO_KNOCKBACK", host.FLNoKnockback},
		{"FL_DROPPED_ITEM", host.FLDroppedItem},
		{"FL_NO_BOTS", host.FLNoBots},
		{"FL_NO_HUMANS", host.FLNoHumans},

		{"CONTENTS_SOLID", host.ContentsSolid},
		{"CONTENTS_LIGHTGRID", host.ContentsLightgrid},
		{"CONTENTS_LAVA", host.ContentsLava},
		{"CONTENTS_SLIME", host.ContentsSlime},
		{"CONTENTS_WATER", host.ContentsWater},
		{"CONTENTS_FOG", host.ContentsFog},
		{"CONTENTS_MISSILECLIP", host.ContentsMissileClip},
		{"CONTENTS_ITEM", host.ContentsItem},
		{"CONTENTS_MOVER", host.ContentsMover},
		{"CONTENTS_AREAPORTAL", host.ContentsAreaPortal},
		{"CONTENTS_PLAYERCLIP", host.ContentsPlayerClip},
		{"CONTENTS_MONSTERCLIP", host.ContentsMonsterClip},
		{"CONTENTS_TELEPORTER", host.ContentsTeleporter},
		{"CONTENTS_JUMPPAD", host.ContentsJumpPad},
		{"CONTENTS_CLUSTERPORTAL", host.ContentsClusterPortal},
		{"CONTENTS_DONOTENTER", host.ContentsDoNotEnter},
		{"CONTENTS_BODY", host.ContentsBody},
		{"CONTENTS_CORPSE", host.ContentsCorpse},
		{"CONTENTS_TRIGGER", host.ContentsTrigger},
		{"CONTENTS_NODROP", host.ContentsNoDrop},

		{"MASK_ALL", host.MaskAll},
		{"MASK_SOLID", host.MaskSolid},
		{"MASK_PLAYERSOLID", host.MaskPlayerSolid},
		{"MASK_WATER", host.MaskWater},
		{"MASK_SHOT", host.MaskShot},
		{"MASK_MISSILESHOT", host.MaskMissileShot},

		{"SURF_NODAMAGE", host.SurfNoDamage},
		{"SURF_SLICK", host.SurfSlick},
		{"SURF_SKY", host.SurfSky},
		{"SURF_LADDER", host.SurfLadder},
		{"SURF_NOIMPACT", host.SurfNoImpact},
		{"SURF_NOMARKS", host.SurfNoMarks},
		{"SURF_METAL", host.SurfMetal},
		{"SURF_WOOD", host.SurfWood},
		{"SURF_GRASS", host.SurfGrass},
		{"SURF_GRAVEL", host.SurfGravel},
		{"SURF_GLASS", host.SurfGlass},
		{"SURF_SNOW", host.SurfSnow},

		{"DAMAGE_RADIUS", host.DamageRadius},
		{"DAMAGE_HALF_KNOCKBACK", host.DamageHalfKnockback},
		{"DAMAGE_NO_KNOCKBACK", host.DamageNoKnockback},
		{"DAMAGE_NO_PROTECTION", host.DamageNoProtection},
		{"DAMAGE_NO_TEAM_PROTECTION", host.DamageNoTeamProtection},
		{"DAMAGE_DISTANCEFALLOFF", host.DamageDistanceFalloff},

		{"SVF_NOCLIENT", host.SVFNoClient},
		{"SVF_BROADCAST", host.SVFBroadcast},
		{"SVF_SINGLECLIENT", host.SVFSingleClient},
		{"SVF_NOSERVERINFO", host.SVFNoServerInfo},
		{"SVF_CAPSULE", host.SVFCapsule},
		{"SVF_NOTSINGLECLIENT", host.SVFNotSingleClient},
		{"SVF_IGNOREBMODELEXTENTS", host.SVFIgnoreBmodelExtents},

		{"GS_INITIALIZE", host.GSInitialize},
		{"GS_PLAYING", host.GSPlaying},
		{"GS_WARMUP_COUNTDOWN", host.GSWarmupCountdown},
		{"GS_WARMUP", host.GSWarmup},
		{"GS_INTERMISSION", host.GSIntermission},
		{"GS_WAITING_FOR_PLAYERS", host.GSWaitingForPlayers},
		{"GS_RESET", host.GSReset},

		{"STATE_DEFAULT", host.StateDefault},
		{"STATE_INVISIBLE", host.StateInvisible},
		{"STATE_UNDERCONSTRUCTION", host.StateUnderConstruction},

		{"CS_SERVERINFO", host.CSServerInfo},
		{"CS_SYSTEMINFO", host.CSSystemInfo},
		{"CS_MUSIC", host.CSMusic},
		{"CS_MESSAGE", host.CSMessage},
		{"CS_MOTD", host.CSMotd},
		{"CS_WARMUP", host.CSWarmup},
		{"CS_VOTE_TIME", host.CSVoteTime},
		{"CS_VOTE_STRING", host.CSVoteString},
		{"CS_VOTE_YES", host.CSVoteYes},
		{"CS_VOTE_NO", host.CSVoteNo},
		{"CS_GAME_VERSION", host.CSGameVersion},
		{"CS_LEVEL_START_TIME", host.CSLevelStartTime},
		{"CS_INTERMISSION", host.CSIntermission},
		{"CS_MULTI_INFO", host.CSMultiInfo},
		{"CS_MULTI_MAPWINNER", host.CSMultiMapWinner},
		{"CS_MULTI_OBJECTIVE", host.CSMultiObjective},
		{"CS_SCREENFADE", host.CSScreenFade},
		{"CS_FOGVARS", host.CSFogVars},
		{"CS_SKYBOXORG", host.CSSkyboxOrg},
		{"CS_TARGETEFFECT", host.CSTargetEffect},
		{"CS_WOLFINFO", host.CSWolfInfo},
		{"CS_FIRSTBLOOD", host.CSFirstBlood},
		{"CS_ROUNDSCORES1", host.CSRoundScores1},
		{"CS_ROUNDSCORES2", host.CSRoundScores2},
		{"CS_MAIN_AXIS_OBJECTIVE", host.CSMainAxisObj},
		{"CS_MAIN_ALLIES_OBJECTIVE", host.CSMainAlliesObj},
		{"CS_MUSIC_QUEUE", host.CSMusicQueue},
		{"CS_SCRIPT_MOVER_NAMES", host.CSScriptMoverNames},
		{"CS_CONSTRUCTION_NAMES", host.CSConstructionName},
		{"CS_VERSIONINFO", host.CSVersionInfo},
		{"CS_REINFSEEDS", host.CSReinfSeeds},
		{"CS_SERVERTOGGLES", host.CSServerToggles},
		{"CS_GLOBALFOGVARS", host.CSGlobalFogVars},
		{"CS_AXIS_MAPS_XP", host.CSAxisMapsXP},
		{"CS_ALLIED_MAPS_XP", host.CSAlliedMapsXP},
		{"CS_INTERMISSION_START_TIME", host.CSIntermissionTime},
		{"CS_ENDGAME_STATS", host.CSEndgameStats},
		{"CS_CHARGETIMES", host.CSChargeTimes},
		{"CS_FILTERCAMS", host.CSFilterCams},
		{"CS_MODELS", host.CSModels},
		{"CS_SOUNDS", host.CSSounds},
		{"CS_SHADERS", host.CSShaders},
		{"CS_SHADERSTATE", host.CSShaderState},
		{"CS_PLAYERS", host.CSPlayers},
		{"CS_MAX", host.CSMax},
	},
	enum("PW_",
		"NONE", "INVULNERABLE", "FIRE", "ELECTRIC", "BREATHER", "NOFATIGUE",
		"REDFLAG", "BLUEFLAG", "OPS_DISGUISED", "OPS_CLASS_1", "OPS_CLASS_2",
		"OPS_CLASS_3", "ADRENALINE", "BLACKOUT", "NUM_POWERUPS"),
	enum("ET_",
		"GENERAL", "PLAYER", "ITEM", "MISSILE", "MOVER", "BEAM", "PORTAL",
		"SPEAKER", "PUSH_TRIGGER", "TELEPORT_TRIGGER", "INVISIBLE",
		"CONCUSSIVE_TRIGGER", "OID_TRIGGER", "EXPLOSIVE_INDICATOR", "EXPLOSIVE",
		"EF_TYPES"),
	enum("WP_",
		"NONE", "KNIFE", "LUGER", "MP40", "GRENADE_LAUNCHER", "PANZERFAUST",
		"FLAMETHROWER", "COLT", "THOMPSON", "GRENADE_PINEAPPLE", "STEN",
		"MEDIC_SYRINGE", "AMMO", "ARTY", "SILENCER", "DYNAMITE", "SMOKETRAIL",
		"MAPMORTAR", "VERY_BIG_EXPLOSION", "MEDKIT", "BINOCULARS", "PLIERS",
		"SMOKE_MARKER", "KAR98", "CARBINE", "GARAND", "LANDMINE", "SATCHEL",
		"SATCHEL_DET", "TRIPMINE", "SMOKE_BOMB", "MOBILE_MG42", "K43", "FG42",
		"DUMMY_MG42", "MORTAR", "AKIMBO_COLT", "AKIMBO_LUGER", "GPG40", "M7",
		"SILENCED_COLT", "GARAND_SCOPE", "K43_SCOPE", "FG42SCOPE", "MORTAR_SET",
		"MEDIC_ADRENALINE", "AKIMBO_SILENCEDCOLT", "AKIMBO_SILENCEDLUGER",
		"MOBILE_MG42_SET", "NUM_WEAPONS"),
	enum("MOD_",
		"UNKNOWN", "MACHINEGUN", "BROWNING", "MG42", "GRENADE", "KNIFE", "LUGER",
		"COLT", "MP40", "THOMPSON", "STEN", "GARAND", "SILENCER", "FG42",
		"FG42_SCOPE", "PANZERFAUST", "GRENADE_LAUNCHER", "FLAMETHROWER",
		"GRENADE_PINEAPPLE", "MAPMORTAR", "MAPMORTAR_SPLASH", "KICKED",
		"DYNAMITE", "AIRSTRIKE", "SYRINGE", "AMMO", "ARTY", "WATER", "SLIME",
		"LAVA", "CRUSH", "TELEFRAG", "FALLING", "SUICIDE", "TARGET_LASER",
		"TRIGGER_HURT", "EXPLOSIVE", "CARBINE", "KAR98", "GPG40", "M7",
		"LANDMINE", "SATCHEL", "SMOKEBOMB", "MOBILE_MG42", "SILENCED_COLT",
		"GARAND_SCOPE", "CRUSH_CONSTRUCTION", "CRUSH_CONSTRUCTIONDEATH",
		"CRUSH_CONSTRUCTIONDEATH_NOATTACKER", "K43", "K43_SCOPE", "MORTAR",
		"AKIMBO_COLT", "AKIMBO_LUGER", "AKIMBO_SILENCEDCOLT",
		"AKIMBO_SILENCEDLUGER", "SMOKEGRENADE", "SWAP_PLACES", "SWITCHTEAM",
		"NUM_MODS"),
)

func concat(groups ...[]Constant) []Constant {
	var result []Constant
	for _, g := range groups {
		result = append(result, g...)
	}
	return result
}
